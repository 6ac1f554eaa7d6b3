package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/internal/query"
	"github.com/sandevgo/membot/pkg/log"
)

// systemMergeHeader prefixes system content folded into a user message
// for backends that reject the system role.
const systemMergeHeader = "INTERNAL CONTEXT (instructions and recalled memory, not from the user):"

const fallbackResponse = "Sorry, I can't reach my language model right now. Please try again in a bit."

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

func getTokenizer() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		tokenizer, _ = tiktoken.GetEncoding("cl100k_base")
	})
	return tokenizer
}

// Router picks the backend tier for a query and dispatches to it.
// Backend failures never escape: every path produces a user-facing
// response string.
type Router struct {
	fast    core.TextBackend
	deep    core.TextBackend
	multi   core.MultimodalBackend
	fetcher Fetcher
}

func NewRouter(fast, deep core.TextBackend, multi core.MultimodalBackend, fetcher Fetcher) *Router {
	return &Router{fast: fast, deep: deep, multi: multi, fetcher: fetcher}
}

// Route answers one query. userText is the cleaned query text used for
// complexity classification; messages is the fully assembled outbound
// conversation ending with the user turn.
func (r *Router) Route(ctx context.Context, userText string, messages []core.Message, attachments []core.AttachmentRef) (string, core.RoutingDecision) {
	logger := log.FromCtx(ctx)

	decision := core.RoutingDecision{Tier: core.TierFast}
	complex := query.IsComplex(userText)

	switch {
	case len(attachments) > 0:
		decision.Tier = core.TierMultimodal
	case complex:
		decision.Tier = core.TierDeepReasoning
	}

	logger.Info().
		Str("tier", string(decision.Tier)).
		Bool("complex", complex).
		Int("attachments", len(attachments)).
		Int("est_tokens", estimateTokens(messages)).
		Msg("routing decision")

	var (
		answer string
		err    error
	)
	switch decision.Tier {
	case core.TierMultimodal:
		var inline []core.InlineAttachment
		inline, decision.SkippedAttachments = collectAttachments(ctx, r.fetcher, attachments)
		outbound := withSkipNote(messages, decision.SkippedAttachments)
		answer, err = r.multi.GenerateMultimodal(ctx, conform(outbound, r.multi.SupportsSystemRole()), inline)
	case core.TierDeepReasoning:
		answer, err = r.deep.Generate(ctx, conform(messages, r.deep.SupportsSystemRole()))
	default:
		answer, err = r.fast.Generate(ctx, conform(messages, r.fast.SupportsSystemRole()))
	}

	if err != nil {
		logger.Error().Err(err).Str("tier", string(decision.Tier)).Msg("backend call failed")
		answer = fallbackResponse
		if len(decision.SkippedAttachments) > 0 {
			reviewed := len(attachments) - len(decision.SkippedAttachments)
			answer += fmt.Sprintf("\n\n(I was only able to look at %d of the %d attachments.)",
				reviewed, len(attachments))
		}
		return answer, decision
	}

	if len(decision.SkippedAttachments) > 0 {
		answer += fmt.Sprintf("\n\n(Skipped attachments over the size limit: %s)",
			strings.Join(decision.SkippedAttachments, ", "))
	}

	return answer, decision
}

// withSkipNote tells the model which files were dropped by the byte
// budget so its answer can account for them.
func withSkipNote(messages []core.Message, skipped []string) []core.Message {
	if len(skipped) == 0 {
		return messages
	}
	note := core.Message{
		Role: core.RoleUser,
		Content: fmt.Sprintf("(Note: these files were skipped because the total attachment size exceeded %s: %s)",
			humanize.IBytes(AttachmentByteBudget), strings.Join(skipped, ", ")),
	}
	out := make([]core.Message, 0, len(messages)+1)
	out = append(out, messages...)
	return append(out, note)
}

// conform folds system messages into a single leading user message when
// the backend does not accept the system role.
func conform(messages []core.Message, supportsSystem bool) []core.Message {
	if supportsSystem {
		return messages
	}

	var system []string
	rest := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	if len(system) == 0 {
		return messages
	}

	merged := core.Message{
		Role:    core.RoleUser,
		Content: systemMergeHeader + "\n\n" + strings.Join(system, "\n\n"),
	}
	return append([]core.Message{merged}, rest...)
}

func estimateTokens(messages []core.Message) int {
	enc := getTokenizer()
	if enc == nil {
		return 0
	}
	total := 0
	for _, m := range messages {
		total += len(enc.Encode(m.Content, nil, nil))
	}
	return total
}
