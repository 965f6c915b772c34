package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/entity"
)

// RecordSource pairs a normalized record with the staged document it came
// from, so failures can be traced back to a document.
type RecordSource struct {
	Document string
	Record   entity.NormalizedRecord
}

// RecordFailure is one failed record in a load report.
type RecordFailure struct {
	Document string
	Err      string
}

// LoadReport summarizes one load batch.
type LoadReport struct {
	Succeeded uint32
	Failed    uint32
	Failures  []RecordFailure
}

// Loader persists normalized records. Each record is one unit of work: the
// job row first, then the five dependent rows keyed by its generated id,
// committed atomically. Records are independent, so the batch fans out
// across a bounded worker pool with no shared transaction.
//
// Load is append-only by design: re-running over the same documents inserts
// new job rows. Each run represents a new snapshot of the source.
type Loader struct {
	store   *Store
	workers int
	logger  *slog.Logger
}

func NewLoader(store *Store, workers int, logger *slog.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, workers: workers, logger: logger}
}

// Load writes every record in its own atomic unit and reports per-record
// outcomes. Record-level failures (constraint violations, malformed
// numerics) are recorded and the batch proceeds; a connection-level failure
// aborts the batch with ErrStoreUnavailable. Rows already committed stay
// committed either way.
func (l *Loader) Load(ctx context.Context, records []RecordSource) (LoadReport, error) {
	if err := l.store.HealthCheck(ctx, 0); err != nil {
		return LoadReport{}, err
	}

	var (
		mu     sync.Mutex
		report LoadReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, src := range records {
		g.Go(func() error {
			err := l.loadOne(gctx, src.Record)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Succeeded++
			case fatal(err):
				return err
			default:
				l.logger.Warn("loader.record.failed", "document", src.Document, "error", err)
				report.Failed++
				report.Failures = append(report.Failures, RecordFailure{Document: src.Document, Err: err.Error()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.Error("loader.batch.aborted", "error", err)
		return report, common.NewAppError("STORE_ERROR", err.Error(), common.ErrStoreUnavailable)
	}
	l.logger.Info("loader.batch.complete", "succeeded", report.Succeeded, "failed", report.Failed)
	return report, nil
}

// fatal reports whether err means the store itself is gone, as opposed to
// one record being rejected.
func fatal(err error) bool {
	return errors.Is(err, common.ErrStoreUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (l *Loader) loadOne(ctx context.Context, rec entity.NormalizedRecord) error {
	// Coerce numeric fields before touching the store so a malformed record
	// never opens a transaction.
	deps, err := dependentRows(rec)
	if err != nil {
		return err
	}

	tx, err := l.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	jobID, err := l.insertJob(ctx, tx, rec.Job)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, d := range deps {
		query, args := entsql.Dialect(l.store.Dialect).
			Insert(d.table).
			Columns(append([]string{"job_id"}, d.columns...)...).
			Values(append([]any{jobID}, d.values...)...).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// insertJob writes the root row and returns its store-generated identifier.
func (l *Loader) insertJob(ctx context.Context, tx *sql.Tx, j entity.Job) (int64, error) {
	b := entsql.Dialect(l.store.Dialect).
		Insert(TableJob).
		Columns("title", "industry", "description", "employment_type", "date_posted").
		Values(nullString(j.Title), nullString(j.Industry), nullString(j.Description), nullString(j.EmploymentType), nullString(j.DatePosted))

	if l.store.Dialect == dialect.Postgres {
		query, args := b.Returning("id").Query()
		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args := b.Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type dependentRow struct {
	table   string
	columns []string
	values  []any
}

// dependentRows builds the five dependent inserts for one record, coercing
// numeric fields to the store's native types. Absent fields become NULL;
// the rows themselves are always written.
func dependentRows(rec entity.NormalizedRecord) ([]dependentRow, error) {
	months, err := nullInt(rec.Experience.MonthsOfExperience, "experience.months_of_experience")
	if err != nil {
		return nil, err
	}
	minValue, err := nullFloat(rec.Salary.MinValue, "salary.min_value")
	if err != nil {
		return nil, err
	}
	maxValue, err := nullFloat(rec.Salary.MaxValue, "salary.max_value")
	if err != nil {
		return nil, err
	}
	latitude, err := nullFloat(rec.Location.Latitude, "location.latitude")
	if err != nil {
		return nil, err
	}
	longitude, err := nullFloat(rec.Location.Longitude, "location.longitude")
	if err != nil {
		return nil, err
	}

	return []dependentRow{
		{
			table:   TableCompany,
			columns: []string{"name", "link"},
			values:  []any{nullString(rec.Company.Name), nullString(rec.Company.Link)},
		},
		{
			table:   TableEducation,
			columns: []string{"required_credential"},
			values:  []any{nullString(rec.Education.RequiredCredential)},
		},
		{
			table:   TableExperience,
			columns: []string{"months_of_experience", "seniority_level"},
			values:  []any{months, nullString(rec.Experience.SeniorityLevel)},
		},
		{
			table:   TableSalary,
			columns: []string{"currency", "min_value", "max_value", "unit"},
			values:  []any{nullString(rec.Salary.Currency), minValue, maxValue, nullString(rec.Salary.Unit)},
		},
		{
			table:   TableLocation,
			columns: []string{"country", "locality", "region", "postal_code", "street_address", "latitude", "longitude"},
			values: []any{
				nullString(rec.Location.Country), nullString(rec.Location.Locality), nullString(rec.Location.Region),
				nullString(rec.Location.PostalCode), nullString(rec.Location.StreetAddress), latitude, longitude,
			},
		},
	}, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(s, field string) (any, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, common.NewAppError("CONSTRAINT_VIOLATION", fmt.Sprintf("%s: %q is not an integer", field, s), common.ErrConstraintViolation)
	}
	return v, nil
}

func nullFloat(s, field string) (any, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, common.NewAppError("CONSTRAINT_VIOLATION", fmt.Sprintf("%s: %q is not numeric", field, s), common.ErrConstraintViolation)
	}
	return v, nil
}
