package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/sandevgo/membot/internal/core"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini serves the deep-reasoning and multimodal tiers. The
// generateContent API has no distinct system role, so SupportsSystemRole
// is false and the router merges system messages before calling in.
type Gemini struct {
	baseProvider
}

func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider(geminiBaseURL, apiKey, model),
	}
}

func (g *Gemini) SupportsSystemRole() bool { return false }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

func (g *Gemini) Generate(ctx context.Context, messages []core.Message) (string, error) {
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, geminiContent{
			Role:  geminiRole(m.Role),
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return g.generateContent(ctx, contents)
}

// GenerateMultimodal folds the attachments into the final user turn as
// inline base64 data, the way the generateContent API expects.
func (g *Gemini) GenerateMultimodal(ctx context.Context, messages []core.Message, attachments []core.InlineAttachment) (string, error) {
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, geminiContent{
			Role:  geminiRole(m.Role),
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	if len(contents) == 0 {
		contents = append(contents, geminiContent{Role: "user"})
	}
	last := &contents[len(contents)-1]
	for _, att := range attachments {
		mime := att.MimeType
		if mime == "" {
			mime = "image/png"
		}
		last.Parts = append(last.Parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: mime,
				Data:     base64.StdEncoding.EncodeToString(att.Data),
			},
		})
	}

	return g.generateContent(ctx, contents)
}

func (g *Gemini) generateContent(ctx context.Context, contents []geminiContent) (string, error) {
	body := map[string]any{"contents": contents}
	path := fmt.Sprintf("/v1beta/models/%s:generateContent?key=%s", g.model, g.apiKey)

	resp, err := g.doRequest(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.NewBackendTransportError(err, "read body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", core.NewBackendStatusError(
			fmt.Sprintf("gemini http %d", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", core.NewBackendStatusError("decode response", goerr.V("body", string(data)))
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", core.NewBackendStatusError("empty candidates", goerr.V("body", string(data)))
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// geminiRole maps roles to the two the API accepts. System messages are
// merged away by the router before reaching this provider; anything
// left over degrades to "user".
func geminiRole(r core.Role) string {
	if r == core.RoleModel {
		return "model"
	}
	return "user"
}
