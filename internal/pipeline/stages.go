package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/jobfeed-etl/constants"
	"github.com/joseph-ayodele/jobfeed-etl/internal/extract"
	"github.com/joseph-ayodele/jobfeed-etl/internal/repository"
	"github.com/joseph-ayodele/jobfeed-etl/internal/staging"
	"github.com/joseph-ayodele/jobfeed-etl/internal/transform"
)

func (p *Pipeline) createSchema(ctx context.Context, _ *RunResult) error {
	return repository.NewSchemaManager(p.store, p.logger).EnsureSchema(ctx)
}

func (p *Pipeline) extract(ctx context.Context, res *RunResult) error {
	n, err := extract.NewExtractor(p.logger).Run(ctx, p.cfg.Paths.SourcePath, p.rawStore())
	res.Extracted = n
	return err
}

// transform fans out over the raw documents with a bounded worker pool.
// Documents have no dependency on each other; a malformed document is
// recorded and skipped, while a staging write failure aborts the stage.
func (p *Pipeline) transform(ctx context.Context, res *RunResult) error {
	rawStore := p.rawStore()
	outStore := p.transformedStore()

	names, err := rawStore.List(constants.RawPrefix)
	if err != nil {
		return err
	}

	// reset per attempt; the stage may be retried as a whole
	res.Transformed = 0
	res.Malformed = nil

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.TransformWorkers)
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := rawStore.Read(name)
			if err != nil {
				return err
			}
			raw, err := transform.Decode(data)
			if err != nil {
				mu.Lock()
				res.Malformed = append(res.Malformed, DocumentFailure{Document: name, Err: err.Error()})
				mu.Unlock()
				p.logger.Warn("transform.document.malformed", "document", name, "error", err)
				return nil
			}
			if err := outStore.WriteRecord(staging.TransformedName(name), transform.Map(raw)); err != nil {
				return err
			}
			mu.Lock()
			res.Transformed++
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) load(ctx context.Context, res *RunResult) error {
	outStore := p.transformedStore()
	names, err := outStore.List(constants.TransformedPrefix)
	if err != nil {
		return err
	}

	var malformed []repository.RecordFailure
	records := make([]repository.RecordSource, 0, len(names))
	for _, name := range names {
		rec, err := outStore.ReadRecord(name)
		if err != nil {
			malformed = append(malformed, repository.RecordFailure{Document: name, Err: err.Error()})
			continue
		}
		records = append(records, repository.RecordSource{Document: name, Record: rec})
	}

	loader := repository.NewLoader(p.store, p.cfg.Pipeline.LoadWorkers, p.logger)
	report, err := loader.Load(ctx, records)
	report.Failed += uint32(len(malformed))
	report.Failures = append(report.Failures, malformed...)
	res.Load = report
	return err
}
