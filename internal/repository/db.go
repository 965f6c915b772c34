package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Store is the relational store handle shared by the schema manager and the
// loader. Workers draw their own connections from the pool, so nothing here
// is shared mutable state across records.
type Store struct {
	DB      *sql.DB
	Dialect string

	pool *pgxpool.Pool // nil for sqlite
}

// Open connects to the relational store. A postgres DSN gets a pgx pool
// wrapped as *sql.DB; anything else is treated as a sqlite path or URI.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if isPostgres(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(cfg, logger)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, common.NewAppError("STORE_ERROR", "invalid postgres DSN", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "jobfeed-etl"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.NewAppError("STORE_ERROR", "connect to postgres", common.ErrStoreUnavailable)
	}

	logger.Info("successfully connected to database")
	return &Store{
		DB:      stdlib.OpenDBFromPool(pool),
		Dialect: dialect.Postgres,
		pool:    pool,
	}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "dialect", dialect.SQLite)
	dsn := cfg.DSN
	if !strings.Contains(dsn, "?") && !strings.Contains(dsn, ":memory:") {
		// concurrent load workers need WAL and a lock wait instead of SQLITE_BUSY
		dsn += "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, common.NewAppError("STORE_ERROR", "open sqlite", err)
	}
	if strings.Contains(cfg.DSN, ":memory:") {
		// in-memory databases exist per connection
		db.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	return &Store{DB: db, Dialect: dialect.SQLite}, nil
}

// Close closes the database connections gracefully
func Close(s *Store, logger *slog.Logger) {
	logger.Info("closing database connections")
	if s == nil {
		return
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the store to catch connectivity issues early. A failed
// ping is reported as ErrStoreUnavailable.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.DB.PingContext(ctx); err != nil {
		return common.NewAppError("STORE_ERROR", "store ping failed", common.ErrStoreUnavailable)
	}
	return nil
}
