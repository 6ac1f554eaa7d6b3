package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/membot/internal/config"
	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/pkg/log"
)

// MaxInputTokens is the embedding model context size; longer inputs are
// truncated at a token boundary before the request goes out.
const MaxInputTokens = 8191

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// OpenAIEmbedder produces fixed-dimensionality vectors via the OpenAI
// embeddings endpoint. Dims never changes within a process lifetime.
type OpenAIEmbedder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	dims    int
}

func NewOpenAIEmbedder(cfg *config.OpenAIConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: "https://api.openai.com",
		apiKey:  cfg.APIKey,
		model:   cfg.EmbeddingModel,
		dims:    cfg.EmbeddingDims,
	}
}

// Dims reports the embedding dimensionality of the configured model.
func (e *OpenAIEmbedder) Dims() int { return e.dims }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateTokens(text, MaxInputTokens)

	payload := map[string]any{
		"model": e.model,
		"input": text,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, core.NewEmbeddingError(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, core.NewEmbeddingError(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, core.NewEmbeddingError(err, "request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewEmbeddingError(err, "read body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewEmbeddingError(
			fmt.Errorf("http %d: %s", resp.StatusCode, string(body)),
			"embeddings endpoint",
		)
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, core.NewEmbeddingError(err, "decode response")
	}
	if len(result.Data) == 0 {
		return nil, core.NewEmbeddingError(fmt.Errorf("empty data"), "decode response")
	}

	vec := result.Data[0].Embedding
	if e.dims > 0 && len(vec) != e.dims {
		return nil, core.NewEmbeddingError(
			fmt.Errorf("got %d dims, want %d", len(vec), e.dims),
			"dimensionality mismatch",
		)
	}

	log.FromCtx(ctx).Debug().Int("dims", len(vec)).Msg("embedded query")
	return vec, nil
}

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

// truncateTokens cuts text to at most max tokens at a token boundary.
func truncateTokens(text string, max int) string {
	if text == "" {
		return text
	}

	enc := getTokenizer()
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= max {
		return text
	}
	return enc.Decode(ids[:max])
}
