// Package finance implements the financial ratio engine: column matching,
// value extraction, ratio calculation and health aggregation.
// Everything in this package is pure and safe for concurrent use.
package finance

import (
	"strings"

	"github.com/ternarybob/kengetal/internal/models"
)

// Canonical field names, identical to the FinancialData JSON keys.
const (
	FieldOmzet               = "omzet"
	FieldNettowinst          = "nettowinst"
	FieldEigenVermogen       = "eigenVermogen"
	FieldVlottendeActiva     = "vlottendeActiva"
	FieldKortlopendeSchulden = "kortlopendeSchulden"
	FieldTotaalActiva        = "totaalActiva"
)

// CanonicalFields lists the canonical fields in FinancialData order.
var CanonicalFields = []string{
	FieldOmzet,
	FieldNettowinst,
	FieldEigenVermogen,
	FieldVlottendeActiva,
	FieldKortlopendeSchulden,
	FieldTotaalActiva,
}

// fieldAliases holds the known column names per canonical field, lower case.
var fieldAliases = map[string][]string{
	FieldOmzet: {
		"omzet", "totale omzet", "netto omzet", "opbrengsten",
		"revenue", "total revenue", "sales", "turnover",
	},
	FieldNettowinst: {
		"nettowinst", "netto winst", "nettoresultaat", "winst",
		"net profit", "net income", "profit",
	},
	FieldEigenVermogen: {
		"eigen vermogen", "eigenvermogen", "totaal eigen vermogen",
		"equity", "total equity", "shareholders equity",
	},
	FieldVlottendeActiva: {
		"vlottende activa", "totaal vlottende activa", "vlottende middelen", "omlopende activa",
		"current assets", "total current assets",
	},
	FieldKortlopendeSchulden: {
		"kortlopende schulden", "kortlopende verplichtingen", "kortlopende passiva",
		"current liabilities", "short-term liabilities", "short term debt",
	},
	FieldTotaalActiva: {
		"totaal activa", "totale activa", "balanstotaal", "activa totaal",
		"total assets", "assets total",
	},
}

// MatchTier is the strength of a header/alias match.
type MatchTier int

const (
	TierNone MatchTier = iota
	TierWordOverlap
	TierSubstring
	TierExact
)

// Score returns the numeric score of the tier.
func (t MatchTier) Score() int {
	switch t {
	case TierExact:
		return 100
	case TierSubstring:
		return 50
	case TierWordOverlap:
		return 25
	default:
		return 0
	}
}

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "EXACT"
	case TierSubstring:
		return "SUBSTRING"
	case TierWordOverlap:
		return "WORD_OVERLAP"
	default:
		return "NONE"
	}
}

// Aliases returns a copy of the alias list for a canonical field.
func Aliases(field string) []string {
	return append([]string(nil), fieldAliases[field]...)
}

// ScoreHeader compares one header with one alias, case-insensitively.
// Precedence: exact equality, then containment in either direction,
// then any pair of whitespace-separated words contained in one another.
func ScoreHeader(header, alias string) MatchTier {
	h := strings.ToLower(strings.TrimSpace(header))
	a := strings.ToLower(strings.TrimSpace(alias))
	if h == "" || a == "" {
		return TierNone
	}

	if h == a {
		return TierExact
	}
	if strings.Contains(a, h) || strings.Contains(h, a) {
		return TierSubstring
	}

	for _, hw := range strings.Fields(h) {
		for _, aw := range strings.Fields(a) {
			if strings.Contains(hw, aw) || strings.Contains(aw, hw) {
				return TierWordOverlap
			}
		}
	}
	return TierNone
}

// MatchField finds the best header for a single canonical field.
// An exact match ends the search; otherwise the first header reaching the
// highest tier wins. The second return value is false when nothing matched.
func MatchField(field string, headers []string) (models.ColumnMatch, bool) {
	best := models.ColumnMatch{Tier: TierNone.String()}
	bestTier := TierNone

	for _, header := range headers {
		for _, alias := range fieldAliases[field] {
			tier := ScoreHeader(header, alias)
			if tier == TierExact {
				return models.ColumnMatch{Header: header, Tier: tier.String(), Score: tier.Score()}, true
			}
			if tier.Score() > bestTier.Score() {
				bestTier = tier
				best = models.ColumnMatch{Header: header, Tier: tier.String(), Score: tier.Score()}
			}
		}
	}

	if bestTier == TierNone {
		return models.ColumnMatch{}, false
	}
	return best, true
}

// MatchColumns maps every canonical field to its best header.
// Fields are matched independently, so one header can serve several fields.
func MatchColumns(headers []string) models.ColumnMapping {
	mapping := make(models.ColumnMapping, len(CanonicalFields))
	for _, field := range CanonicalFields {
		if match, ok := MatchField(field, headers); ok {
			mapping[field] = match
		}
	}
	return mapping
}
