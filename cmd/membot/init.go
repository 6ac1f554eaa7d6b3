package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandevgo/membot/internal/config"
	"github.com/sandevgo/membot/pkg/env"
	"github.com/sandevgo/membot/pkg/log"
)

var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Create the runtime directory and a starter .env",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			logger.Info().Str("path", envPath).Msg(".env already exists, leaving it alone")
			return nil
		}

		content, err := starterEnv()
		if err != nil {
			return err
		}
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			return fmt.Errorf("failed to write .env: %w", err)
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Fill in the API keys in .env, then run 'membot start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// starterEnv renders the default configuration with placeholder keys.
func starterEnv() (string, error) {
	sections := []any{
		&config.AppConfig{
			FastProvider:  "openai",
			EnableCLI:     true,
			SemanticLimit: 5,
			TemporalLimit: 5,
		},
		&config.OpenAIConfig{
			APIKey:         "sk-your-openai-key",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-ada-002",
			EmbeddingDims:  1536,
		},
		&config.GeminiConfig{
			APIKey:        "your-gemini-key",
			ThinkingModel: "gemini-2.5-flash",
			FlashModel:    "gemini-2.0-flash-lite",
		},
		&config.TelegramConfig{
			Token: "your-telegram-token",
		},
	}

	var out string
	for _, section := range sections {
		part, err := env.MarshalEnv(section)
		if err != nil {
			return "", fmt.Errorf("failed to render .env section: %w", err)
		}
		out += part
	}
	return out, nil
}
