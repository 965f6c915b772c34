// Package extract copies the "context" column of a tabular source into one
// raw staged document per row. It performs no transformation.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/jobfeed-etl/constants"
	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/staging"
)

// Extractor reads a tabular source and stages its context column.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Run stages one raw document per source row and returns the row count.
// sourcePath may be the source file itself or a directory holding a
// jobs.csv or jobs.xlsx.
func (e *Extractor) Run(ctx context.Context, sourcePath string, store *staging.Store) (int, error) {
	path, err := resolveSource(sourcePath)
	if err != nil {
		return 0, err
	}

	var rows []string
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "csv":
		rows, err = readCSV(path)
	case "xlsx":
		rows, err = readXLSX(path)
	default:
		err = common.NewAppError("SOURCE_ERROR", fmt.Sprintf("unsupported source format %q", filepath.Ext(path)), common.ErrInvalidInput)
	}
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := store.Write(staging.RawName(i), []byte(row)); err != nil {
			return i, err
		}
	}
	e.logger.Info("extract.complete", "source", path, "rows", len(rows))
	return len(rows), nil
}

func resolveSource(sourcePath string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", common.WrapError(err, "stat source")
	}
	if !info.IsDir() {
		return sourcePath, nil
	}
	for _, name := range []string{"jobs.csv", "jobs.xlsx"} {
		p := filepath.Join(sourcePath, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", common.NewAppError("SOURCE_ERROR", fmt.Sprintf("no jobs.csv or jobs.xlsx under %s", sourcePath), common.ErrInvalidInput)
}
