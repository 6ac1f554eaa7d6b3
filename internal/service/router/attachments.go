package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/pkg/log"
)

// AttachmentByteBudget caps the total attachment bytes inlined into one
// multimodal request. Admission is strictly in upload order: the first
// attachment that would push past the budget is skipped along with
// everything after it.
const AttachmentByteBudget = 20 * 1024 * 1024

// Fetcher resolves an attachment reference to its bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref core.AttachmentRef) (core.InlineAttachment, error)
}

type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: 60 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref core.AttachmentRef) (core.InlineAttachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return core.InlineAttachment{}, goerr.Wrap(err, "build attachment request", goerr.T(core.TagAttachmentFetch))
	}
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return core.InlineAttachment{}, goerr.Wrap(err, "fetch attachment", goerr.T(core.TagAttachmentFetch))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.InlineAttachment{}, goerr.New(
			fmt.Sprintf("attachment fetch returned status %d", resp.StatusCode),
			goerr.T(core.TagAttachmentFetch), goerr.V("url", ref.URL))
	}

	// one extra byte past the budget is enough to reject oversize files
	data, err := io.ReadAll(io.LimitReader(resp.Body, AttachmentByteBudget+1))
	if err != nil {
		return core.InlineAttachment{}, goerr.Wrap(err, "read attachment body", goerr.T(core.TagAttachmentFetch))
	}

	return core.InlineAttachment{
		MimeType: ref.MimeType,
		FileName: ref.FileName,
		Data:     data,
	}, nil
}

// collectAttachments fetches attachments sequentially and admits them
// in order until the byte budget runs out. A failed fetch skips that
// attachment only; a budget overflow skips the rest as well.
func collectAttachments(ctx context.Context, fetcher Fetcher, refs []core.AttachmentRef) ([]core.InlineAttachment, []string) {
	logger := log.FromCtx(ctx)

	included := make([]core.InlineAttachment, 0, len(refs))
	var skipped []string
	var used int

	for i, ref := range refs {
		att, err := fetcher.Fetch(ctx, ref)
		if err != nil {
			logger.Warn().Err(err).Str("file", ref.FileName).Msg("attachment fetch failed, skipping")
			skipped = append(skipped, ref.FileName)
			continue
		}

		if used+len(att.Data) > AttachmentByteBudget {
			for _, rest := range refs[i:] {
				skipped = append(skipped, rest.FileName)
			}
			logger.Info().
				Str("file", ref.FileName).
				Str("used", humanize.Bytes(uint64(used))).
				Msg("attachment budget exhausted")
			break
		}

		used += len(att.Data)
		included = append(included, att)
	}

	return included, skipped
}
