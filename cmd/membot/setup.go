package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/membot/internal/config"
	"github.com/sandevgo/membot/internal/providers/embed"
	"github.com/sandevgo/membot/internal/providers/llm"
	"github.com/sandevgo/membot/internal/service/chat"
	"github.com/sandevgo/membot/internal/service/memory"
	"github.com/sandevgo/membot/internal/service/router"
	"github.com/sandevgo/membot/internal/storage/sqlite"
	"github.com/sandevgo/membot/internal/transport/cli"
	"github.com/sandevgo/membot/internal/transport/telegram"
	"github.com/sandevgo/membot/pkg/log"
	"github.com/sandevgo/membot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	openaiCfg := config.NewOpenAIConfig(ctx)
	geminiCfg := config.NewGeminiConfig(ctx)

	// 2. Storage
	db, memories, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Embedder
	embedder := embed.NewOpenAIEmbedder(openaiCfg)

	// 4. Model backends, one per tier
	fast, err := llm.NewFastBackend(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize fast backend")
	}
	deep := llm.NewGemini(geminiCfg.APIKey, geminiCfg.ThinkingModel)
	multi := llm.NewGemini(geminiCfg.APIKey, geminiCfg.FlashModel)

	// 5. Pipeline
	retriever := memory.NewRetriever(memories, appCfg.SemanticLimit, appCfg.TemporalLimit)
	rt := router.NewRouter(fast, deep, multi, router.NewHTTPFetcher())
	orchestrator := chat.NewOrchestrator(embedder, retriever, rt)

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, orchestrator)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, *sqlite.MemoriesRepo, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewMemoriesRepo(db), nil
}

func initTransports(ctx context.Context, cfg *config.AppConfig, orchestrator *chat.Orchestrator) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orchestrator)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(orchestrator, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
