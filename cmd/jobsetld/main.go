package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/pipeline"
	repo "github.com/joseph-ayodele/jobfeed-etl/internal/repository"
)

// jobsetld runs the pipeline on a recurring schedule. Missed ticks are
// dropped, not back-filled; a run that fails after exhausting its stage
// retry budgets is logged and the daemon waits for the next tick.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer repo.Close(store, logger)

	p := pipeline.New(cfg, store, logger)
	runOnce := func() {
		if _, err := p.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduled run failed", "error", err)
		}
	}

	logger.Info("scheduler started", "interval", cfg.Pipeline.Schedule)
	runOnce()

	ticker := time.NewTicker(cfg.Pipeline.Schedule)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down...")
			fmt.Println("stopped.")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
