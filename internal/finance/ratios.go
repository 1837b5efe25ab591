package finance

import (
	"math"

	"github.com/ternarybob/kengetal/internal/models"
)

// Ratio display names. Explanation fallbacks are keyed on these exact strings.
const (
	NameRentabiliteit = "Rentabiliteit (ROE)"
	NameLiquiditeit   = "Liquiditeit (Current Ratio)"
	NameSolvabiliteit = "Solvabiliteit (Equity Ratio)"
)

// ratioDefinition describes one ratio type.
type ratioDefinition struct {
	name       string
	formula    string
	benchmark  models.BenchmarkRange
	percentage bool // value is displayed ×100 with a % sign
}

var (
	rentabiliteitDef = ratioDefinition{
		name:       NameRentabiliteit,
		formula:    "Nettowinst / Eigen vermogen × 100%",
		benchmark:  models.BenchmarkRange{Min: 0.05, Max: 0.15, Ideal: 0.08},
		percentage: true,
	}
	liquiditeitDef = ratioDefinition{
		name:      NameLiquiditeit,
		formula:   "Vlottende activa / Kortlopende schulden",
		benchmark: models.BenchmarkRange{Min: 1.0, Max: 3.0, Ideal: 1.5},
	}
	solvabiliteitDef = ratioDefinition{
		name:       NameSolvabiliteit,
		formula:    "Eigen vermogen / Totaal activa × 100%",
		benchmark:  models.BenchmarkRange{Min: 0.20, Max: 0.60, Ideal: 0.35},
		percentage: true,
	}
)

var definitionsByName = map[string]ratioDefinition{
	NameRentabiliteit: rentabiliteitDef,
	NameLiquiditeit:   liquiditeitDef,
	NameSolvabiliteit: solvabiliteitDef,
}

// Benchmark returns the benchmark range for a ratio name.
func Benchmark(name string) (models.BenchmarkRange, bool) {
	def, ok := definitionsByName[name]
	return def.benchmark, ok
}

// IsPercentage reports whether the named ratio is displayed as a percentage.
func IsPercentage(name string) bool {
	return definitionsByName[name].percentage
}

// CalculateRentabiliteit computes return on equity: nettowinst / eigenVermogen.
func CalculateRentabiliteit(nettowinst, eigenVermogen *float64) models.FinancialRatio {
	return rentabiliteitDef.calculate(nettowinst, eigenVermogen)
}

// CalculateLiquiditeit computes the current ratio: vlottendeActiva / kortlopendeSchulden.
func CalculateLiquiditeit(vlottendeActiva, kortlopendeSchulden *float64) models.FinancialRatio {
	return liquiditeitDef.calculate(vlottendeActiva, kortlopendeSchulden)
}

// CalculateSolvabiliteit computes the equity ratio: eigenVermogen / totaalActiva.
func CalculateSolvabiliteit(eigenVermogen, totaalActiva *float64) models.FinancialRatio {
	return solvabiliteitDef.calculate(eigenVermogen, totaalActiva)
}

// calculate divides numerator by denominator. Missing inputs or a zero
// denominator leave Value and IsHealthy nil. Health is judged on the raw
// ratio, before display scaling.
func (d ratioDefinition) calculate(numerator, denominator *float64) models.FinancialRatio {
	ratio := models.FinancialRatio{
		Name:           d.name,
		Formula:        d.formula,
		BenchmarkRange: d.benchmark,
	}

	if numerator == nil || denominator == nil || *denominator == 0 {
		return ratio
	}

	raw := *numerator / *denominator
	var value float64
	if d.percentage {
		value = math.Round(raw*10000) / 100
	} else {
		value = math.Round(raw*100) / 100
	}
	if value == 0 {
		value = 0 // drop negative zero
	}
	healthy := raw >= d.benchmark.Min && raw <= d.benchmark.Max

	ratio.Value = &value
	ratio.IsHealthy = &healthy
	return ratio
}

// CalculateAllRatios computes the three ratios and their summary.
func CalculateAllRatios(data models.FinancialData) models.RatioAnalysis {
	analysis := models.RatioAnalysis{
		Rentabiliteit: CalculateRentabiliteit(data.Nettowinst, data.EigenVermogen),
		Liquiditeit:   CalculateLiquiditeit(data.VlottendeActiva, data.KortlopendeSchulden),
		Solvabiliteit: CalculateSolvabiliteit(data.EigenVermogen, data.TotaalActiva),
	}

	for _, r := range analysis.Ratios() {
		if r.Value == nil {
			continue
		}
		analysis.Summary.TotalRatios++
		if r.IsHealthy != nil && *r.IsHealthy {
			analysis.Summary.HealthyRatios++
		} else {
			analysis.Summary.WarningRatios++
		}
	}

	return analysis
}
