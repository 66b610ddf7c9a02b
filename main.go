package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
	_ "github.com/schemalens/schemalens-engine/pkg/adapters/datasource/mssql"
	_ "github.com/schemalens/schemalens-engine/pkg/adapters/datasource/postgres"
	_ "github.com/schemalens/schemalens-engine/pkg/adapters/datasource/sqlite"
	"github.com/schemalens/schemalens-engine/pkg/config"
	"github.com/schemalens/schemalens-engine/pkg/enrich"
	"github.com/schemalens/schemalens-engine/pkg/evidence"
	"github.com/schemalens/schemalens-engine/pkg/llm"
	"github.com/schemalens/schemalens-engine/pkg/logging"
	"github.com/schemalens/schemalens-engine/pkg/models"
	"github.com/schemalens/schemalens-engine/pkg/runstore"
	"github.com/schemalens/schemalens-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("version", Version),
		zap.String("env", cfg.Env),
		zap.String("dialect", cfg.Database.Dialect),
		zap.String("dsn", logging.SanitizeDSN(cfg.Database.DSN)),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	client, err := llm.NewChatClient(&llm.FactoryConfig{
		Provider: cfg.AI.Provider,
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create chat client", zap.Error(err))
	}

	searcher := evidence.NewSearcher(cfg.UsageLogPath, logger)
	orchestrator := enrich.NewOrchestrator(&enrich.OrchestratorConfig{
		Client:      client,
		Executor:    evidence.NewToolExecutor(searcher, logger),
		Cache:       enrich.NewCacheStore(cfg.CachePath, logger),
		MaxTurns:    cfg.AI.MaxTurns,
		TurnTimeout: cfg.AI.TurnTimeout(),
		Logger:      logger,
	})

	store := runstore.NewStore(logger)
	service := services.NewPipelineService(store, datasource.NewConnectorFactory(logger), orchestrator, cfg, logger)

	run, err := service.Execute(context.Background(), "cli")
	if err != nil {
		logger.Fatal("pipeline execution failed", zap.Error(err))
	}

	for _, entry := range run.PipelineLog {
		logger.Info("pipeline step",
			zap.String("step", entry.Step),
			zap.String("status", entry.Status),
			zap.String("message", entry.Message))
	}

	if run.Status != models.RunStatusCompleted {
		logger.Error("run did not complete",
			zap.String("run_id", run.RunID),
			zap.Strings("errors", run.Errors))
		os.Exit(1)
	}

	overview := models.Summarize(run.SchemaEnriched)
	logger.Info("run completed",
		zap.String("run_id", run.RunID),
		zap.Int("tables", overview.TotalTables),
		zap.Int("columns", overview.TotalColumns),
		zap.Int64("rows", overview.TotalRows),
		zap.Float64("avg_health", overview.AvgHealth),
		zap.Int("pii_columns", overview.PIIColumnCount))

	encoded, err := json.MarshalIndent(run.SchemaEnriched, "", "  ")
	if err != nil {
		logger.Fatal("failed to encode dictionary", zap.Error(err))
	}
	os.Stdout.Write(encoded)
	os.Stdout.Write([]byte("\n"))
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
