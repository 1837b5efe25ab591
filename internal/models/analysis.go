package models

import "time"

// Analysis is a stored analysis run for a project.
type Analysis struct {
	ID        string         `json:"id"`         // ana_{uuid}
	ProjectID string         `json:"project_id"` // owning project, supplied by the caller
	Source    string         `json:"source"`     // uploaded filename or "manual"
	Mapping   ColumnMapping  `json:"mapping,omitempty"`
	Data      FinancialData  `json:"data"`
	Result    AnalysisResult `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableAnalysis is the outcome of analysing a parsed table.
type TableAnalysis struct {
	AnalysisID string          `json:"analysisId,omitempty"` // set when the analysis was stored
	Mapping    ColumnMapping   `json:"mapping"`
	Data       FinancialData   `json:"data"`
	Result     *AnalysisResult `json:"result"`
}
