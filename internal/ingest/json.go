package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/kengetal/internal/models"
)

// jsonTable is the {"headers": [...], "rows": [...]} document shape.
// Rows are either objects keyed by header or arrays in header order.
type jsonTable struct {
	Headers []string          `json:"headers"`
	Rows    []json.RawMessage `json:"rows"`
}

// parseJSON accepts a {headers, rows} document or an array of objects.
// Numbers are kept as json.Number so no precision is lost before extraction.
func parseJSON(data []byte) (*models.Table, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return nil, ErrEmptyTable
	}

	if trimmed[0] == '[' {
		var objects []json.RawMessage
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil, fmt.Errorf("decode json rows: %w", err)
		}
		return objectsTable(nil, objects)
	}

	var doc jsonTable
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode json table: %w", err)
	}
	if len(doc.Rows) > 0 && bytes.HasPrefix(bytes.TrimSpace(doc.Rows[0]), []byte("[")) {
		records := [][]interface{}{}
		header := make([]interface{}, len(doc.Headers))
		for i, h := range doc.Headers {
			header[i] = h
		}
		records = append(records, header)
		for _, raw := range doc.Rows {
			var rec []interface{}
			if err := decodeNumbers(raw, &rec); err != nil {
				return nil, fmt.Errorf("decode json row: %w", err)
			}
			records = append(records, rec)
		}
		return buildTable(records)
	}
	return objectsTable(doc.Headers, doc.Rows)
}

// objectsTable builds a table from row objects. Without explicit headers the
// keys are collected in first-seen document order.
func objectsTable(headers []string, objects []json.RawMessage) (*models.Table, error) {
	explicit := len(headers) > 0
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}

	rows := make([]models.Row, 0, len(objects))
	for _, raw := range objects {
		keys, row, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		if !explicit {
			for _, k := range keys {
				if !seen[k] {
					seen[k] = true
					headers = append(headers, k)
				}
			}
		}
		rows = append(rows, row)
	}

	records := [][]interface{}{make([]interface{}, len(headers))}
	for i, h := range headers {
		records[0][i] = h
	}
	for _, row := range rows {
		rec := make([]interface{}, len(headers))
		for i, h := range headers {
			rec[i] = row[h]
		}
		records = append(records, rec)
	}
	return buildTable(records)
}

func decodeObject(raw json.RawMessage) ([]string, models.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode json row: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("decode json row: expected object, got %v", tok)
	}

	var keys []string
	row := make(models.Row)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode json row: %w", err)
		}
		key, _ := tok.(string)
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("decode json row %q: %w", key, err)
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = value
	}
	return keys, row, nil
}

func decodeNumbers(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
