package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/sandevgo/membot/internal/core"
)

// OpenAICompatible talks to any /v1/chat/completions endpoint. It backs
// the fast tier and supports the system role natively.
type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) SupportsSystemRole() bool { return true }

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *OpenAICompatible) Generate(ctx context.Context, messages []core.Message) (string, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": toOpenAIWire(messages),
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return parseOpenAIResponse(resp)
}

// toOpenAIWire maps the model role to the OpenAI "assistant" spelling.
func toOpenAIWire(messages []core.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		role := string(m.Role)
		if m.Role == core.RoleModel {
			role = "assistant"
		}
		out = append(out, wireMessage{Role: role, Content: m.Content})
	}
	return out
}

func parseOpenAIResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.NewBackendTransportError(err, "read body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", core.NewBackendStatusError(
			fmt.Sprintf("http %d", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	var result struct {
		Choices []struct {
			Message wireMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", core.NewBackendStatusError("decode response", goerr.V("body", string(data)))
	}
	if len(result.Choices) == 0 {
		return "", core.NewBackendStatusError("empty choices", goerr.V("body", string(data)))
	}
	return result.Choices[0].Message.Content, nil
}
