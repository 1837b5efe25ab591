package models

// Row maps a column header to its raw cell value.
// Cells are float64, string, other numeric kinds or nil depending on the source format.
type Row map[string]interface{}

// Table is parsed tabular input: the header line and the data rows keyed by header.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// ColumnMatch records which header was matched to a canonical field, and how.
type ColumnMatch struct {
	Header string `json:"header"`
	Tier   string `json:"tier"`
	Score  int    `json:"score"`
}

// ColumnMapping maps canonical field names (omzet, nettowinst, ...) to their match.
// Fields without a match are left out.
type ColumnMapping map[string]ColumnMatch
