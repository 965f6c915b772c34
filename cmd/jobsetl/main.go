package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/pipeline"
	repo "github.com/joseph-ayodele/jobfeed-etl/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags; flags override the environment
	var (
		source  = flag.String("source", "", "source table file or directory (overrides SOURCE_PATH)")
		staging = flag.String("staging", "", "staging directory for documents (overrides STAGING_PATH)")
		db      = flag.String("db", "", "store DSN: sqlite path or postgres URL (overrides DB_URL)")
	)
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if *source != "" {
		cfg.Paths.SourcePath = *source
	}
	if *staging != "" {
		cfg.Paths.StagingPath = *staging
	}
	if *db != "" {
		cfg.Database.DSN = *db
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

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

	res, err := pipeline.New(cfg, store, logger).Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Run complete!\n")
	fmt.Printf("- Rows extracted: %d\n", res.Extracted)
	fmt.Printf("- Documents transformed: %d\n", res.Transformed)
	fmt.Printf("- Malformed documents: %d\n", len(res.Malformed))
	fmt.Printf("- Records loaded: %d\n", res.Load.Succeeded)
	fmt.Printf("- Records failed: %d\n", res.Load.Failed)
}
