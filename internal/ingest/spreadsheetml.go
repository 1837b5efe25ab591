package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/ternarybob/kengetal/internal/models"
)

// parseSpreadsheetML reads an Excel 2003 XML workbook (Workbook/Worksheet/Table/Row/Cell/Data).
// Only the first worksheet with data rows is used.
func parseSpreadsheetML(data []byte) (*models.Table, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	tables := doc.FindElements("//Worksheet/Table")
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no SpreadsheetML worksheet found", ErrUnsupportedFormat)
	}

	for _, tbl := range tables {
		var records [][]interface{}
		for _, row := range tbl.SelectElements("Row") {
			records = append(records, readRow(row))
		}
		table, err := buildTable(records)
		if errors.Is(err, ErrEmptyTable) {
			continue
		}
		return table, err
	}
	return nil, ErrEmptyTable
}

// readRow honours ss:Index, which skips to a 1-based column position.
func readRow(row *etree.Element) []interface{} {
	var rec []interface{}
	for _, cell := range row.SelectElements("Cell") {
		if idx := indexAttr(cell); idx > len(rec)+1 {
			for len(rec) < idx-1 {
				rec = append(rec, nil)
			}
		}
		rec = append(rec, cellValue(cell))
	}
	return rec
}

func indexAttr(cell *etree.Element) int {
	raw := cell.SelectAttrValue("ss:Index", cell.SelectAttrValue("Index", ""))
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return idx
}

func cellValue(cell *etree.Element) interface{} {
	d := cell.SelectElement("Data")
	if d == nil {
		return nil
	}
	text := strings.TrimSpace(d.Text())
	if strings.EqualFold(d.SelectAttrValue("ss:Type", d.SelectAttrValue("Type", "")), "Number") {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return v
		}
	}
	return text
}
