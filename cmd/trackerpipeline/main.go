package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"TrackerPipeline/internal/app"
	"TrackerPipeline/internal/config"
	"TrackerPipeline/internal/logging"
)

func main() {
	daemon := flag.Bool("daemon", false, "keep running and execute the pipeline once a day")
	flag.Parse()

	cfg := config.Load()
	logger, closeLog := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.Dir)
	defer closeLog()

	if cfg.Keys.Anthropic == "" {
		logger.Error("ANTHROPIC_API_KEY not set, aborting")
		closeLog()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	defer application.Close()

	if *daemon {
		err = application.RunDaemon(ctx)
	} else {
		err = application.RunOnce(ctx)
	}
	if err != nil {
		// Partial failures are recorded in run state; the process still
		// exits cleanly so the next scheduled invocation runs.
		logger.Error("pipeline run failed", "error", err)
	}
}
