package report

import (
	"fmt"
	"strings"

	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/models"
)

const dateLayout = "02-01-2006 15:04"

var healthLabels = map[models.OverallHealth]string{
	models.HealthHealthy:  "Gezond",
	models.HealthWarning:  "Aandacht vereist",
	models.HealthCritical: "Kritiek",
}

// HealthLabel returns the Dutch label for an overall health verdict
func HealthLabel(h models.OverallHealth) string {
	if label, ok := healthLabels[h]; ok {
		return label
	}
	return string(h)
}

// BuildMarkdown renders a stored analysis as a markdown report:
// title, ratio table, conclusion with insights and one section per explanation.
func BuildMarkdown(a *models.Analysis) string {
	var b strings.Builder

	b.WriteString("# Financiële analyse\n\n")
	if a.ProjectID != "" {
		fmt.Fprintf(&b, "**Project:** %s  \n", escapeCell(a.ProjectID))
	}
	if a.Source != "" {
		fmt.Fprintf(&b, "**Bron:** %s  \n", escapeCell(a.Source))
	}
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "**Datum:** %s\n", a.CreatedAt.Local().Format(dateLayout))
	}
	b.WriteString("\n")

	writeResult(&b, &a.Result)
	return b.String()
}

func writeResult(b *strings.Builder, result *models.AnalysisResult) {
	b.WriteString("## Kengetallen\n\n")
	b.WriteString("| Ratio | Waarde | Norm | Status |\n")
	b.WriteString("|-------|--------|------|--------|\n")
	for _, r := range result.Ratios.Ratios() {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			escapeCell(r.Name), finance.FormatValue(r), finance.FormatBenchmark(r), finance.StatusOf(r).Label)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "## Conclusie: %s\n\n", HealthLabel(result.Summary.OverallHealth))
	for _, insight := range result.Summary.KeyInsights {
		fmt.Fprintf(b, "- %s\n", insight)
	}
	b.WriteString("\n")

	if len(result.Explanations) == 0 {
		return
	}
	b.WriteString("## Toelichting\n\n")
	for _, e := range result.Explanations {
		fmt.Fprintf(b, "### %s (%s)\n\n%s\n\n", e.Ratio, e.Waarde, strings.TrimSpace(e.Uitleg))
	}
}

// escapeCell keeps user supplied text from breaking the table layout
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
