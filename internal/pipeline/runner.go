// Package pipeline sequences the four ETL stages: create_schema, extract,
// transform, load. A stage runs only after its predecessor succeeds; a
// failed stage is retried up to the configured budget with a fixed delay
// between attempts.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobfeed-etl/constants"
	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/repository"
	"github.com/joseph-ayodele/jobfeed-etl/internal/staging"
)

// DocumentFailure is one document that could not be processed.
type DocumentFailure struct {
	Document string
	Err      string
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID       uuid.UUID
	Extracted   int
	Transformed int
	Malformed   []DocumentFailure
	Load        repository.LoadReport
	Elapsed     time.Duration
}

// Pipeline coordinates the stages over one configuration and store handle.
type Pipeline struct {
	cfg    *common.Config
	store  *repository.Store
	logger *slog.Logger
}

func New(cfg *common.Config, store *repository.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, store: store, logger: logger}
}

// Run executes the stages in order and returns the run summary. The first
// stage that exhausts its retry budget fails the run; stages that already
// completed are not undone (load is append-only).
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	res := &RunResult{RunID: uuid.New()}
	logger := p.logger.With("run_id", res.RunID)
	start := time.Now()
	logger.Info("run.started")

	stages := []struct {
		name constants.Stage
		fn   func(context.Context, *RunResult) error
	}{
		{constants.StageCreateSchema, p.createSchema},
		{constants.StageExtract, p.extract},
		{constants.StageTransform, p.transform},
		{constants.StageLoad, p.load},
	}
	for _, stage := range stages {
		if err := p.runStage(ctx, logger, stage.name, stage.fn, res); err != nil {
			logger.Error("run.failed", "stage", stage.name, "error", err)
			return res, err
		}
	}

	res.Elapsed = time.Since(start)
	logger.Info("run.complete",
		"extracted", res.Extracted,
		"transformed", res.Transformed,
		"malformed", len(res.Malformed),
		"loaded", res.Load.Succeeded,
		"load_failed", res.Load.Failed,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (p *Pipeline) runStage(ctx context.Context, logger *slog.Logger, name constants.Stage, fn func(context.Context, *RunResult) error, res *RunResult) error {
	attempt := 0
	op := func() error {
		attempt++
		logger.Info("stage.started", "stage", name, "attempt", attempt)
		if err := fn(ctx, res); err != nil {
			logger.Error("stage.attempt.failed", "stage", name, "attempt", attempt, "error", err)
			return err
		}
		logger.Info("stage.complete", "stage", name, "attempt", attempt)
		return nil
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.cfg.Pipeline.RetryDelay), p.cfg.Pipeline.StageRetries),
		ctx,
	)
	return backoff.Retry(op, bo)
}

func (p *Pipeline) rawStore() *staging.Store {
	return staging.NewStore(filepath.Join(p.cfg.Paths.StagingPath, constants.RawDir), p.logger)
}

func (p *Pipeline) transformedStore() *staging.Store {
	return staging.NewStore(filepath.Join(p.cfg.Paths.StagingPath, constants.TransformedDir), p.logger)
}
