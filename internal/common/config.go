package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Paths    PathsConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// PathsConfig holds the source and staging locations. They are passed
// explicitly into each component rather than read as fixed state.
type PathsConfig struct {
	SourcePath  string
	StagingPath string
}

// PipelineConfig holds stage retry and fan-out configuration
type PipelineConfig struct {
	TransformWorkers int
	LoadWorkers      int
	StageRetries     uint64
	RetryDelay       time.Duration
	Schedule         time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Paths: PathsConfig{
			SourcePath:  getEnv("SOURCE_PATH", "./source"),
			StagingPath: getEnv("STAGING_PATH", "./staging"),
		},
		Pipeline: PipelineConfig{
			TransformWorkers: getEnvAsInt("TRANSFORM_WORKERS", 4),
			LoadWorkers:      getEnvAsInt("LOAD_WORKERS", 4),
			StageRetries:     uint64(getEnvAsInt("STAGE_RETRIES", 3)),
			RetryDelay:       getEnvAsDuration("STAGE_RETRY_DELAY", 15*time.Minute),
			Schedule:         getEnvAsDuration("RUN_SCHEDULE", 24*time.Hour),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Paths.SourcePath == "" {
		return NewAppError("CONFIG_ERROR", "SOURCE_PATH is required", ErrInvalidInput)
	}
	if c.Paths.StagingPath == "" {
		return NewAppError("CONFIG_ERROR", "STAGING_PATH is required", ErrInvalidInput)
	}
	return nil
}
