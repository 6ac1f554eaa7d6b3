package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/membot/pkg/log"
)

type OpenAIConfig struct {
	APIKey         string `env:"OPENAI_API_KEY,required,notEmpty"`
	Model          string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
	// EmbeddingDims is fixed for the process lifetime; the vector table
	// is created with this dimensionality.
	EmbeddingDims int `env:"OPENAI_EMBEDDING_DIMS" envDefault:"1536"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
