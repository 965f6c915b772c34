package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/entity"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "jobs.db")}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { Close(s, logger) })
	if err := NewSchemaManager(s, logger).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestLoadCommitsAllSixRows(t *testing.T) {
	s := testStore(t)
	loader := NewLoader(s, 1, testLogger())

	rec := entity.NormalizedRecord{
		Job:        entity.Job{Title: "Engineer", Industry: "IT Services"},
		Company:    entity.Company{Name: "Acme"},
		Experience: entity.Experience{MonthsOfExperience: "24", SeniorityLevel: "Mid"},
		Salary:     entity.Salary{MinValue: "80000"},
		Location:   entity.Location{Country: "US", Latitude: "40.7128"},
	}
	report, err := loader.Load(context.Background(), []RecordSource{{Document: "transformed_extracted_0.json", Record: rec}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v, want 1 succeeded", report)
	}

	var jobID int64
	var title string
	if err := s.DB.QueryRow("SELECT id, title FROM job").Scan(&jobID, &title); err != nil {
		t.Fatalf("query job: %v", err)
	}
	if title != "Engineer" {
		t.Errorf("job.title = %q", title)
	}

	var salJobID int64
	var minValue float64
	if err := s.DB.QueryRow("SELECT job_id, min_value FROM salary").Scan(&salJobID, &minValue); err != nil {
		t.Fatalf("query salary: %v", err)
	}
	if salJobID != jobID {
		t.Errorf("salary.job_id = %d, want %d", salJobID, jobID)
	}
	if minValue != 80000 {
		t.Errorf("salary.min_value = %v, want 80000", minValue)
	}

	var months int64
	if err := s.DB.QueryRow("SELECT months_of_experience FROM experience WHERE job_id = ?", jobID).Scan(&months); err != nil {
		t.Fatalf("query experience: %v", err)
	}
	if months != 24 {
		t.Errorf("experience.months_of_experience = %d, want 24", months)
	}

	for _, table := range []string{TableCompany, TableEducation, TableExperience, TableSalary, TableLocation} {
		if n := countRows(t, s, table); n != 1 {
			t.Errorf("%s rows = %d, want 1 (row written even when fields are empty)", table, n)
		}
	}
}

func TestLoadRollsBackBadRecordOnly(t *testing.T) {
	s := testStore(t)
	loader := NewLoader(s, 1, testLogger())

	bad := entity.NormalizedRecord{
		Job:        entity.Job{Title: "Broken"},
		Experience: entity.Experience{MonthsOfExperience: "two years"},
	}
	good := entity.NormalizedRecord{
		Job: entity.Job{Title: "Valid"},
	}
	report, err := loader.Load(context.Background(), []RecordSource{
		{Document: "transformed_extracted_0.json", Record: bad},
		{Document: "transformed_extracted_1.json", Record: good},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("report = %+v, want 1 succeeded / 1 failed", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].Document != "transformed_extracted_0.json" {
		t.Fatalf("failures = %+v", report.Failures)
	}

	// the bad record left no rows behind in any table
	if n := countRows(t, s, TableJob); n != 1 {
		t.Errorf("job rows = %d, want 1", n)
	}
	var title string
	if err := s.DB.QueryRow("SELECT title FROM job").Scan(&title); err != nil {
		t.Fatal(err)
	}
	if title != "Valid" {
		t.Errorf("surviving job = %q, want %q", title, "Valid")
	}
	for _, table := range []string{TableCompany, TableEducation, TableExperience, TableSalary, TableLocation} {
		if n := countRows(t, s, table); n != 1 {
			t.Errorf("%s rows = %d, want 1", table, n)
		}
	}
}

func TestLoadConcurrentDistinctIDs(t *testing.T) {
	s := testStore(t)
	loader := NewLoader(s, 4, testLogger())

	const n = 20
	records := make([]RecordSource, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, RecordSource{
			Document: fmt.Sprintf("transformed_extracted_%d.json", i),
			Record: entity.NormalizedRecord{
				Job: entity.Job{Title: fmt.Sprintf("Job %d", i)},
			},
		})
	}
	report, err := loader.Load(context.Background(), records)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Succeeded != n || report.Failed != 0 {
		t.Fatalf("report = %+v, want %d succeeded", report, n)
	}

	var distinct int
	if err := s.DB.QueryRow("SELECT COUNT(DISTINCT id) FROM job").Scan(&distinct); err != nil {
		t.Fatal(err)
	}
	if distinct != n {
		t.Errorf("distinct job ids = %d, want %d", distinct, n)
	}
	for _, table := range []string{TableCompany, TableEducation, TableExperience, TableSalary, TableLocation} {
		var refs int
		if err := s.DB.QueryRow("SELECT COUNT(DISTINCT job_id) FROM " + table).Scan(&refs); err != nil {
			t.Fatal(err)
		}
		if refs != n {
			t.Errorf("%s references %d jobs, want %d", table, refs, n)
		}
	}
}

func TestLoadStoreUnavailable(t *testing.T) {
	logger := testLogger()
	s, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "jobs.db")}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := NewSchemaManager(s, logger).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := s.DB.Close(); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(s, 1, logger)
	_, err = loader.Load(context.Background(), []RecordSource{{Document: "transformed_extracted_0.json"}})
	if !errors.Is(err, common.ErrStoreUnavailable) {
		t.Errorf("Load error = %v, want ErrStoreUnavailable", err)
	}
}

func TestDependentRowsCoercion(t *testing.T) {
	_, err := dependentRows(entity.NormalizedRecord{
		Location: entity.Location{Latitude: "north"},
	})
	if !errors.Is(err, common.ErrConstraintViolation) {
		t.Errorf("dependentRows error = %v, want ErrConstraintViolation", err)
	}

	rows, err := dependentRows(entity.NormalizedRecord{})
	if err != nil {
		t.Fatalf("dependentRows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("dependent rows = %d, want 5", len(rows))
	}
	// empty fields coerce to NULL, never drop the row
	for _, r := range rows {
		for i, v := range r.values {
			if v != nil {
				t.Errorf("%s.%s = %v, want nil", r.table, r.columns[i], v)
			}
		}
	}
}
