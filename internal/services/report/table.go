package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/models"
)

var statusColors = map[string]text.Colors{
	finance.ColorGreen: {text.FgGreen},
	finance.ColorRed:   {text.FgRed},
	finance.ColorGray:  {text.FgHiBlack},
}

// RenderTable writes the ratio table, the conclusion and the explanations for terminal output
func RenderTable(w io.Writer, result *models.AnalysisResult, color bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.SeparateRows = false

	tw.AppendHeader(table.Row{"RATIO", "WAARDE", "NORM", "STATUS"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})

	for _, r := range result.Ratios.Ratios() {
		status := finance.StatusOf(r)
		label := status.Label
		if color {
			label = statusColors[status.Color].Sprint(label)
		}
		tw.AppendRow(table.Row{r.Name, finance.FormatValue(r), finance.FormatBenchmark(r), label})
	}
	tw.Render()

	fmt.Fprintln(w)
	heading := "Conclusie: " + HealthLabel(result.Summary.OverallHealth)
	if color {
		heading = text.Bold.Sprint(heading)
	}
	fmt.Fprintln(w, heading)
	for _, insight := range result.Summary.KeyInsights {
		fmt.Fprintf(w, "  - %s\n", insight)
	}

	for _, e := range result.Explanations {
		fmt.Fprintln(w)
		title := fmt.Sprintf("%s (%s)", e.Ratio, e.Waarde)
		if color {
			title = text.Bold.Sprint(title)
		}
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, text.WrapSoft(e.Uitleg, 80))
	}
}
