package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ternarybob/kengetal/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(data []byte, filename string) (*models.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = sniffDelimiter(filename, data)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return buildTable(stringRecords(rows))
}

// sniffDelimiter returns tab for .tsv files, otherwise the most frequent of
// comma, semicolon and tab on the first non-empty line.
func sniffDelimiter(filename string, data []byte) rune {
	if strings.EqualFold(filepath.Ext(filename), ".tsv") {
		return '\t'
	}

	var first string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
