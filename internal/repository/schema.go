package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
)

// Table names of the normalized schema. job is the root; the five others
// each carry a job_id foreign key.
const (
	TableJob        = "job"
	TableCompany    = "company"
	TableEducation  = "education"
	TableExperience = "experience"
	TableSalary     = "salary"
	TableLocation   = "location"
)

// SchemaManager ensures the six tables exist before any load. It never
// drops or alters existing tables.
type SchemaManager struct {
	store  *Store
	logger *slog.Logger
}

func NewSchemaManager(store *Store, logger *slog.Logger) *SchemaManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaManager{store: store, logger: logger}
}

// EnsureSchema applies the CREATE TABLE IF NOT EXISTS statements. Safe to
// run on every pipeline run; a store with the schema in place is a no-op.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(m.store.Dialect) {
		if _, err := m.store.DB.ExecContext(ctx, stmt); err != nil {
			m.logger.Error("schema.create.failed", "error", err)
			return common.WrapError(err, "ensure schema")
		}
	}
	m.logger.Info("schema.ensured", "tables", 6)
	return nil
}

func schemaStatements(d string) []string {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	fk := "INTEGER"
	if d == dialect.Postgres {
		pk = "BIGSERIAL PRIMARY KEY"
		fk = "BIGINT"
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS job (
	id %s,
	title VARCHAR(225),
	industry VARCHAR(225),
	description TEXT,
	employment_type VARCHAR(125),
	date_posted DATE
)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS company (
	id %s,
	job_id %s,
	name VARCHAR(225),
	link TEXT,
	FOREIGN KEY (job_id) REFERENCES job(id)
)`, pk, fk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS education (
	id %s,
	job_id %s,
	required_credential VARCHAR(225),
	FOREIGN KEY (job_id) REFERENCES job(id)
)`, pk, fk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS experience (
	id %s,
	job_id %s,
	months_of_experience INTEGER,
	seniority_level VARCHAR(25),
	FOREIGN KEY (job_id) REFERENCES job(id)
)`, pk, fk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS salary (
	id %s,
	job_id %s,
	currency VARCHAR(3),
	min_value NUMERIC,
	max_value NUMERIC,
	unit VARCHAR(12),
	FOREIGN KEY (job_id) REFERENCES job(id)
)`, pk, fk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS location (
	id %s,
	job_id %s,
	country VARCHAR(60),
	locality VARCHAR(60),
	region VARCHAR(60),
	postal_code VARCHAR(25),
	street_address VARCHAR(225),
	latitude NUMERIC,
	longitude NUMERIC,
	FOREIGN KEY (job_id) REFERENCES job(id)
)`, pk, fk),
	}
}
