// Package app wires configuration into a runnable pipeline.
package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"TrackerPipeline/internal/config"
	"TrackerPipeline/internal/data"
	"TrackerPipeline/internal/infrastructure/llm"
	"TrackerPipeline/internal/infrastructure/notify"
	"TrackerPipeline/internal/infrastructure/scheduler"
	"TrackerPipeline/internal/infrastructure/sources"
	"TrackerPipeline/internal/infrastructure/storage"
	"TrackerPipeline/internal/logging"
	"TrackerPipeline/internal/ports"
	"TrackerPipeline/internal/processing"
	"TrackerPipeline/internal/ratelimit"
	"TrackerPipeline/internal/source"
	"TrackerPipeline/internal/state"
	"TrackerPipeline/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	runs     *usecase.Scheduler
	db       *sql.DB
}

// New builds a runnable application instance. The optional Postgres
// archive and Telegram notifier are wired only when configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	limiter := ratelimit.New(cfg.Limits, baseLogger.With("component", "ratelimit"))

	registry := source.NewRegistry()
	registry.Register(sources.NewFederalRegister(limiter, baseLogger.With("component", "source.federal_register")))
	registry.Register(sources.NewCongress(cfg.Keys.Congress, limiter, baseLogger.With("component", "source.congress")))
	registry.Register(sources.NewCourtListener(cfg.Keys.CourtListener, cfg.Sources.CourtQueries, limiter, baseLogger.With("component", "source.courtlistener")))
	registry.Register(sources.NewNewsAPI(cfg.Keys.NewsAPI, cfg.Sources.NewsQueries, limiter, baseLogger.With("component", "source.news")))

	client := llm.NewClient(cfg.Models.BaseURL, cfg.Keys.Anthropic, nil)
	analyzer := llm.NewAnalyzer(client, cfg.Models, limiter, baseLogger.With("component", "analyzer"))

	// Archive setup failures are not fatal: the run proceeds without the
	// mirror and the published document stays authoritative.
	var db *sql.DB
	var archive ports.EntryArchive
	if cfg.Archive.DSN != "" {
		conn, err := sql.Open("postgres", cfg.Archive.DSN)
		if err != nil {
			baseLogger.Error("archive db unavailable, continuing without archive", "error", err)
		} else if pg, err := storage.NewPostgresArchive(ctx, conn); err != nil {
			baseLogger.Error("archive setup failed, continuing without archive", "error", err)
			conn.Close()
		} else {
			db = conn
			archive = pg
		}
	}

	var notifier ports.Notifier
	if cfg.Notify.BotToken != "" && cfg.Notify.ChatID != "" {
		notifier = notify.NewTelegram(cfg.Notify.BotToken, cfg.Notify.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:  registry,
		Prefilter: processing.NewPrefilter(cfg.Filter.Keywords, cfg.Filter.MaxItems, baseLogger.With("component", "prefilter")),
		Analyzer:  analyzer,
		Data:      data.NewManager(cfg.Paths.Data, cfg.Paths.Index, baseLogger.With("component", "data")),
		State:     state.NewManager(cfg.Paths.State),
		Deduper:   processing.Deduper{Logger: baseLogger.With("component", "dedup")},
		Archive:   archive,
		Notifier:  notifier,
		Logger:    baseLogger.With("component", "pipeline"),
		Run:       cfg.Run,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		runs:     usecase.NewScheduler(scheduler.NewDaily(), pipeline),
		db:       db,
	}, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) error {
	_, err := a.pipeline.ProcessDay(ctx, time.Now().UTC())
	return err
}

// RunDaemon runs the pipeline daily until the context is canceled.
func (a *Application) RunDaemon(ctx context.Context) error {
	if err := a.runs.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.runs.Stop(stopCtx)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
