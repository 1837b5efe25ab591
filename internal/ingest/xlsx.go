package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ternarybob/kengetal/internal/models"
	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet that contains a table
func parseXLSX(data []byte) (*models.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, sh := range f.GetSheetList() {
		rows, err := f.GetRows(sh, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sh, err)
		}
		table, err := buildTable(stringRecords(rows))
		if errors.Is(err, ErrEmptyTable) {
			continue
		}
		return table, err
	}
	return nil, ErrEmptyTable
}
