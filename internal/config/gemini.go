package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/membot/pkg/log"
)

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY,required,notEmpty"`
	// ThinkingModel answers the deep-reasoning tier, FlashModel the
	// multimodal tier.
	ThinkingModel string `env:"GEMINI_THINKING_MODEL" envDefault:"gemini-2.5-flash"`
	FlashModel    string `env:"GEMINI_FLASH_MODEL" envDefault:"gemini-2.0-flash-lite"`
}

func NewGeminiConfig(ctx context.Context) *GeminiConfig {
	c := &GeminiConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gemini config")
	}
	return c
}
