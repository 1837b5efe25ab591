package finance

import (
	"fmt"

	"github.com/ternarybob/kengetal/internal/models"
)

// Insight texts.
const (
	InsightInsufficientData = "Onvoldoende gegevens om financiële ratio's te berekenen. Controleer of omzet, winst, vermogen en schulden in de upload staan."
	InsightComplete         = "Volledige analyse beschikbaar: alle drie de ratio's konden worden berekend."
)

// Summarize derives the overall health and the key insights of an analysis.
func Summarize(analysis models.RatioAnalysis) models.HealthSummary {
	s := analysis.Summary

	summary := models.HealthSummary{
		OverallHealth: overallHealth(s),
		KeyInsights:   []string{},
	}

	if s.TotalRatios == 0 {
		summary.KeyInsights = append(summary.KeyInsights, InsightInsufficientData)
		return summary
	}

	if s.HealthyRatios > 0 {
		summary.KeyInsights = append(summary.KeyInsights,
			fmt.Sprintf("%d van de %d ratio's vallen binnen de sectornorm.", s.HealthyRatios, s.TotalRatios))
	}
	if s.WarningRatios > 0 {
		if s.WarningRatios == 1 {
			summary.KeyInsights = append(summary.KeyInsights, "1 ratio vereist aandacht.")
		} else {
			summary.KeyInsights = append(summary.KeyInsights,
				fmt.Sprintf("%d ratio's vereisen aandacht.", s.WarningRatios))
		}
	}
	if s.TotalRatios == 3 {
		summary.KeyInsights = append(summary.KeyInsights, InsightComplete)
	}

	return summary
}

func overallHealth(s models.RatioSummary) models.OverallHealth {
	switch {
	case s.TotalRatios == 0:
		return models.HealthCritical
	case s.WarningRatios > 0:
		return models.HealthWarning
	default:
		return models.HealthHealthy
	}
}
