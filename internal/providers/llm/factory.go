package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/membot/internal/config"
	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/pkg/log"
)

// NewFastBackend creates the fast-tier backend based on configuration.
func NewFastBackend(ctx context.Context, cfg *config.AppConfig) (core.TextBackend, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.FastProvider).
		Msg("starting fast-tier backend")

	switch cfg.FastProvider {
	case "openai":
		c := config.NewOpenAIConfig(ctx)
		return NewOpenAI(c.APIKey, c.Model), nil
	case "openrouter":
		c := config.NewOpenRouterConfig(ctx)
		return NewOpenRouter(c.APIKey, c.Model), nil
	case "custom":
		c := config.NewCustomOpenAIConfig(ctx)
		return NewCustomOpenAI(c.BaseURL, c.APIKey, c.Model), nil
	default:
		return nil, fmt.Errorf("unknown fast provider: %s", cfg.FastProvider)
	}
}
