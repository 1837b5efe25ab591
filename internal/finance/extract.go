package finance

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ternarybob/kengetal/internal/models"
)

// outlierFactor is how many times larger than the last value another value
// must be before it is taken as the real figure. Observed heuristic, not a validated rule.
const outlierFactor = 2.0

var numberCleaner = strings.NewReplacer(
	"€", "", "$", "", "£", "", "¥", "", "₹", "",
	",", "",
	"(", "", ")", "",
)

// ParseAmount converts a cell into a number.
// Strings may carry currency symbols, comma thousand separators and
// accounting parentheses for negatives ("(500)" is -500).
func ParseAmount(cell interface{}) (float64, bool) {
	var v float64
	switch c := cell.(type) {
	case nil:
		return 0, false
	case float64:
		v = c
	case float32:
		v = float64(c)
	case int:
		v = float64(c)
	case int8:
		v = float64(c)
	case int16:
		v = float64(c)
	case int32:
		v = float64(c)
	case int64:
		v = float64(c)
	case uint:
		v = float64(c)
	case uint8:
		v = float64(c)
	case uint16:
		v = float64(c)
	case uint32:
		v = float64(c)
	case uint64:
		v = float64(c)
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, ok := parseAmountString(c)
		if !ok {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseAmountString(s string) (float64, bool) {
	cleaned := numberCleaner.Replace(s)
	cleaned = strings.Join(strings.Fields(cleaned), "")
	if cleaned == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		f = -f
	}
	return f, true
}

// ExtractValue picks one representative number for a column.
// The last numeric value in row order wins unless another value is more
// than outlierFactor times larger in magnitude, in which case the largest
// magnitude wins. Returns nil when the column has no numeric cells.
func ExtractValue(rows []models.Row, column string) *float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		cell, ok := row[column]
		if !ok {
			continue
		}
		if v, ok := ParseAmount(cell); ok {
			values = append(values, v)
		}
	}

	switch len(values) {
	case 0:
		return nil
	case 1:
		return &values[0]
	}

	last := values[len(values)-1]
	largest := values[0]
	for _, v := range values[1:] {
		if math.Abs(v) > math.Abs(largest) {
			largest = v
		}
	}

	if math.Abs(largest) > outlierFactor*math.Abs(last) {
		return &largest
	}
	return &last
}

// MatchAndExtract builds FinancialData from a parsed table.
func MatchAndExtract(headers []string, rows []models.Row) models.FinancialData {
	data, _ := Extract(headers, rows)
	return data
}

// Extract is MatchAndExtract that also returns the column mapping it used.
func Extract(headers []string, rows []models.Row) (models.FinancialData, models.ColumnMapping) {
	mapping := MatchColumns(headers)

	value := func(field string) *float64 {
		match, ok := mapping[field]
		if !ok {
			return nil
		}
		return ExtractValue(rows, match.Header)
	}

	data := models.FinancialData{
		Omzet:               value(FieldOmzet),
		Nettowinst:          value(FieldNettowinst),
		EigenVermogen:       value(FieldEigenVermogen),
		VlottendeActiva:     value(FieldVlottendeActiva),
		KortlopendeSchulden: value(FieldKortlopendeSchulden),
		TotaalActiva:        value(FieldTotaalActiva),
	}
	return data, mapping
}
