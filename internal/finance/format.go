package finance

import (
	"math"
	"strconv"

	"github.com/ternarybob/kengetal/internal/models"
)

// NotAvailable is shown in place of a missing ratio value.
const NotAvailable = "N/B"

// Status labels and colours shown next to a ratio.
const (
	StatusHealthy          = "Gezond"
	StatusAttention        = "Aandacht vereist"
	StatusInsufficientData = "Onvoldoende data"

	ColorGreen = "green"
	ColorRed   = "red"
	ColorGray  = "gray"
)

// Status is the display state of a ratio.
type Status struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// FormatValue renders a ratio value for display: "8%" for percentage
// ratios, "1.5" for liquidity, NotAvailable when there is no value.
func FormatValue(r models.FinancialRatio) string {
	if r.Value == nil {
		return NotAvailable
	}
	s := strconv.FormatFloat(*r.Value, 'f', -1, 64)
	if IsPercentage(r.Name) {
		return s + "%"
	}
	return s
}

// StatusOf derives the display status from IsHealthy.
func StatusOf(r models.FinancialRatio) Status {
	switch {
	case r.IsHealthy == nil:
		return Status{Label: StatusInsufficientData, Color: ColorGray}
	case *r.IsHealthy:
		return Status{Label: StatusHealthy, Color: ColorGreen}
	default:
		return Status{Label: StatusAttention, Color: ColorRed}
	}
}

// FormatBenchmarkValue renders a fractional benchmark bound the way the
// ratio itself is displayed ("5%" for 0.05 on percentage ratios).
func FormatBenchmarkValue(name string, v float64) string {
	if IsPercentage(name) {
		return strconv.FormatFloat(math.Round(v*10000)/100, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBenchmark renders the healthy range of a ratio, e.g. "5% - 15%".
func FormatBenchmark(r models.FinancialRatio) string {
	b := r.BenchmarkRange
	return FormatBenchmarkValue(r.Name, b.Min) + " - " + FormatBenchmarkValue(r.Name, b.Max)
}
