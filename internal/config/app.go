package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/membot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MEMBOT_RUNTIME_PATH" envDefault:".membot"`

	// Fast-tier provider selection
	FastProvider string `env:"FAST_PROVIDER" envDefault:"openai"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`

	// Retrieval limits per lookup
	SemanticLimit int `env:"SEMANTIC_LIMIT" envDefault:"5"`
	TemporalLimit int `env:"TEMPORAL_LIMIT" envDefault:"5"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "membot.db")
}
