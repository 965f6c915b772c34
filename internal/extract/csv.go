package extract

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/joseph-ayodele/jobfeed-etl/constants"
	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
)

// readCSV returns the context column of a CSV source, one value per row.
func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(err, "open source")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // context cells may embed commas elsewhere in the row

	header, err := r.Read()
	if err != nil {
		return nil, common.WrapError(err, "read source header")
	}
	col := columnIndex(header)
	if col < 0 {
		return nil, common.NewAppError("SOURCE_ERROR", "source has no context column", common.ErrInvalidInput)
	}

	var rows []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.WrapError(err, "read source row")
		}
		if col >= len(record) {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, record[col])
	}
	return rows, nil
}

func columnIndex(header []string) int {
	for i, name := range header {
		if name == constants.ContextColumn {
			return i
		}
	}
	return -1
}
