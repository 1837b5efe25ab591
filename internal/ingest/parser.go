// Package ingest turns uploaded spreadsheet files into a models.Table.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ternarybob/kengetal/internal/models"
)

var (
	// ErrEmptyTable is returned when a file holds no header row or no data rows
	ErrEmptyTable = errors.New("table has no header or data rows")
	// ErrUnsupportedFormat is returned for files that are not csv, xlsx, SpreadsheetML, json or yaml
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Format identifies a supported input format
type Format string

const (
	FormatCSV           Format = "csv"
	FormatXLSX          Format = "xlsx"
	FormatSpreadsheetML Format = "spreadsheetml"
	FormatJSON          Format = "json"
	FormatYAML          Format = "yaml"
)

var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks a format from the file extension, falling back to the content.
func DetectFormat(filename string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xml":
		return FormatSpreadsheetML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case "":
		// sniff below
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatSpreadsheetML, nil
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON, nil
	case len(trimmed) > 0:
		return FormatCSV, nil
	}
	return "", ErrEmptyTable
}

// Parse reads data as the format implied by filename and returns the table.
func Parse(filename string, data []byte) (*models.Table, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return parseCSV(data, filename)
	case FormatXLSX:
		return parseXLSX(data)
	case FormatSpreadsheetML:
		return parseSpreadsheetML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// buildTable uses the first non-blank record as header line.
// Blank and duplicate headers are dropped together with their column; fully blank rows are skipped.
func buildTable(records [][]interface{}) (*models.Table, error) {
	headerIdx := -1
	for i, rec := range records {
		if !blankRecord(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyTable
	}

	type column struct {
		index int
		name  string
	}
	var columns []column
	seen := make(map[string]bool)
	for i, cell := range records[headerIdx] {
		name := strings.TrimSpace(cellString(cell))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, column{index: i, name: name})
	}
	if len(columns) == 0 {
		return nil, ErrEmptyTable
	}

	table := &models.Table{Headers: make([]string, 0, len(columns))}
	for _, c := range columns {
		table.Headers = append(table.Headers, c.name)
	}

	for _, rec := range records[headerIdx+1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(models.Row, len(columns))
		for _, c := range columns {
			if c.index < len(rec) {
				row[c.name] = rec[c.index]
			} else {
				row[c.name] = nil
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	return table, nil
}

func blankRecord(rec []interface{}) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cellString(cell)) != "" {
			return false
		}
	}
	return true
}

func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func stringRecords(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		rec := make([]interface{}, len(row))
		for j, cell := range row {
			rec[j] = cell
		}
		out[i] = rec
	}
	return out
}
