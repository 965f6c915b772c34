package extract

import (
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
)

// readXLSX returns the context column of the first sheet of an XLSX source.
func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.WrapError(err, "open source")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewAppError("SOURCE_ERROR", "source workbook has no sheets", common.ErrInvalidInput)
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.WrapError(err, "read source rows")
	}
	if len(all) == 0 {
		return nil, common.NewAppError("SOURCE_ERROR", "source has no header row", common.ErrInvalidInput)
	}
	col := columnIndex(all[0])
	if col < 0 {
		return nil, common.NewAppError("SOURCE_ERROR", "source has no context column", common.ErrInvalidInput)
	}

	rows := make([]string, 0, len(all)-1)
	for _, record := range all[1:] {
		if col >= len(record) {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, record[col])
	}
	return rows, nil
}
