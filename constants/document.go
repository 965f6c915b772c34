package constants

import "strings"

// Staged document naming convention. Raw documents are keyed by source row
// index; a transformed document derives its name from the raw one.
const (
	RawPrefix         = "extracted_"
	TransformedPrefix = "transformed_"
	DocumentExt       = ".json"
)

// Staging subdirectories for the two document kinds.
const (
	RawDir         = "extracted"
	TransformedDir = "transformed"
)

// ContextColumn is the source table column holding one flat job-posting
// document per row.
const ContextColumn = "context"

// SourceExtensions holds the tabular source formats extraction understands.
var SourceExtensions = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
