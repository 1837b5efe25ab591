package explain

import (
	"fmt"
	"strings"

	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/models"
)

// BuildPrompt renders the generation prompt for one ratio.
// waarde is the display value as produced by finance.FormatValue.
func BuildPrompt(ratio models.FinancialRatio, waarde string, maxWords int) string {
	var b strings.Builder

	b.WriteString("Je bent een financieel adviseur die studenten helpt de financiële gezondheid van een organisatie te beoordelen.\n")
	fmt.Fprintf(&b, "Leg de volgende financiële ratio uit in maximaal %d woorden, in helder Nederlands en zonder opsommingstekens.\n\n", maxWords)

	fmt.Fprintf(&b, "Ratio: %s\n", ratio.Name)
	fmt.Fprintf(&b, "Waarde: %s\n", waarde)
	fmt.Fprintf(&b, "Formule: %s\n", ratio.Formula)

	r := ratio.BenchmarkRange
	fmt.Fprintf(&b, "Sectornorm: tussen %s en %s, ideaal %s\n\n",
		finance.FormatBenchmarkValue(ratio.Name, r.Min), finance.FormatBenchmarkValue(ratio.Name, r.Max), finance.FormatBenchmarkValue(ratio.Name, r.Ideal))

	b.WriteString("Beschrijf wat deze waarde zegt over de organisatie, vergelijk haar met de sectornorm en noem één concreet aandachtspunt.")
	return b.String()
}
