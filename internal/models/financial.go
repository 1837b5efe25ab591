package models

// FinancialData holds the six canonical inputs of a ratio analysis.
// A nil field means the figure could not be derived from the input.
type FinancialData struct {
	Omzet               *float64 `json:"omzet"`               // revenue
	Nettowinst          *float64 `json:"nettowinst"`          // net profit
	EigenVermogen       *float64 `json:"eigenVermogen"`       // equity
	VlottendeActiva     *float64 `json:"vlottendeActiva"`     // current assets
	KortlopendeSchulden *float64 `json:"kortlopendeSchulden"` // current liabilities
	TotaalActiva        *float64 `json:"totaalActiva"`        // total assets
}

// BenchmarkRange is the sector range a raw (unscaled) ratio is judged against.
type BenchmarkRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Ideal float64 `json:"ideal"`
}

// FinancialRatio is one computed indicator.
type FinancialRatio struct {
	Name           string         `json:"name"`
	Value          *float64       `json:"value"`     // rounded to 2 decimals, percentage-scaled for rentabiliteit/solvabiliteit
	Formula        string         `json:"formula"`   // display only
	IsHealthy      *bool          `json:"isHealthy"` // nil iff Value is nil
	BenchmarkRange BenchmarkRange `json:"benchmarkRange"`
}

// RatioSummary counts ratios by health state.
type RatioSummary struct {
	TotalRatios    int `json:"totalRatios"`
	HealthyRatios  int `json:"healthyRatios"`
	WarningRatios  int `json:"warningRatios"`
	CriticalRatios int `json:"criticalRatios"` // reserved, always 0
}

// RatioAnalysis holds the three ratios and their summary.
type RatioAnalysis struct {
	Rentabiliteit FinancialRatio `json:"rentabiliteit"`
	Liquiditeit   FinancialRatio `json:"liquiditeit"`
	Solvabiliteit FinancialRatio `json:"solvabiliteit"`
	Summary       RatioSummary   `json:"summary"`
}

// Ratios returns the three ratios in the fixed presentation order.
func (a RatioAnalysis) Ratios() []FinancialRatio {
	return []FinancialRatio{a.Rentabiliteit, a.Liquiditeit, a.Solvabiliteit}
}

// OverallHealth classifies the analysis as a whole.
type OverallHealth string

const (
	HealthHealthy  OverallHealth = "healthy"
	HealthWarning  OverallHealth = "warning"
	HealthCritical OverallHealth = "critical"
)

// HealthSummary is the aggregated verdict over a RatioAnalysis.
type HealthSummary struct {
	OverallHealth OverallHealth `json:"overallHealth"`
	KeyInsights   []string      `json:"keyInsights"`
}

// RatioExplanation is the prose shown next to a ratio.
type RatioExplanation struct {
	Ratio  string `json:"ratio"`
	Waarde string `json:"waarde"` // formatted display value
	Uitleg string `json:"uitleg"`
}

// AnalysisResult is the output of the full analysis pipeline.
type AnalysisResult struct {
	Ratios       RatioAnalysis      `json:"ratios"`
	Explanations []RatioExplanation `json:"explanations"`
	Summary      HealthSummary      `json:"summary"`
}
