// Package app wires configuration into a ready pipeline for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/export"
	"github.com/joseph-ayodele/schedule-ingest/internal/extract"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm/gemini"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm/openai"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
	"github.com/joseph-ayodele/schedule-ingest/internal/repository"
)

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Processor *pipeline.Processor
	Sink      repository.ClassSink // nil when persistence is disabled
	Exporter  *export.Service
}

// NewExtractor returns the configured extraction client, or nil when no
// credential is set.
func NewExtractor(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.ScheduleExtractor, error) {
	if !cfg.Configured() {
		logger.Warn("llm.not_configured", "provider", cfg.Provider)
		return nil, nil
	}
	switch cfg.Provider {
	case common.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			Timeout:     cfg.CallTimeout,
		}, logger)
	case common.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			Timeout:     cfg.CallTimeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// New builds the pipeline from cfg. Close releases the sink.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	sink, err := repository.OpenSink(ctx, cfg.Database, logger)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "open class store", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}

	proc := pipeline.NewProcessor(logger,
		pipeline.Config{
			HasCredential: extractor != nil,
			Models:        cfg.LLM.Models,
			CallTimeout:   cfg.LLM.CallTimeout,
		},
		extractor,
		extract.NewPDFTextExtractor(logger),
		sink,
	)
	logger.Info("app.ready",
		"provider", cfg.LLM.Provider,
		"models", cfg.LLM.Models,
		"ai_enabled", extractor != nil,
		"db_driver", cfg.Database.Driver,
	)
	return &App{
		Config:    cfg,
		Logger:    logger,
		Processor: proc,
		Sink:      sink,
		Exporter:  export.NewService(logger),
	}, nil
}

func (a *App) Close() {
	if a.Sink == nil {
		return
	}
	if err := a.Sink.Close(); err != nil {
		a.Logger.Error("failed to close class store", "error", err)
	}
}
