// Package staging reads and writes the staged documents that flow between
// pipeline stages. Raw documents are keyed by source row index; transformed
// documents are keyed by a name derived from the raw document's name. One
// document holds exactly one record.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/jobfeed-etl/constants"
	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/entity"
)

// Store is a document store rooted at a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory this store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

// RawName returns the staged name for the raw document of source row index.
func RawName(index int) string {
	return fmt.Sprintf("%s%d%s", constants.RawPrefix, index, constants.DocumentExt)
}

// TransformedName derives a transformed document's name from its raw
// counterpart.
func TransformedName(rawName string) string {
	return constants.TransformedPrefix + rawName
}

// List returns the names of documents matching prefix, sorted. Hidden files
// and anything without the document extension are skipped.
func (s *Store) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		// no documents staged yet
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "list staged documents")
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, constants.DocumentExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of one staged document by name.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, common.WrapError(err, "read staged document")
	}
	return data, nil
}

// Write stores one document under name, creating the directory on first use.
func (s *Store) Write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return common.WrapError(err, "create staging directory")
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return common.WrapError(err, "write staged document")
	}
	s.logger.Debug("staging.document.written", "name", name)
	return nil
}

// WriteRecord stores one normalized record as an indented JSON document.
func (s *Store) WriteRecord(name string, rec entity.NormalizedRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return common.WrapError(err, "encode normalized record")
	}
	return s.Write(name, data)
}

// ReadRecord loads one transformed document back into a normalized record.
func (s *Store) ReadRecord(name string) (entity.NormalizedRecord, error) {
	data, err := s.Read(name)
	if err != nil {
		return entity.NormalizedRecord{}, err
	}
	var rec entity.NormalizedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return entity.NormalizedRecord{}, common.NewAppError("MALFORMED_DOCUMENT", "transformed document is not a normalized record", common.ErrMalformedInput)
	}
	return rec, nil
}
