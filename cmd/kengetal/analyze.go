package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/kengetal/internal/app"
	"github.com/ternarybob/kengetal/internal/common"
	"github.com/ternarybob/kengetal/internal/ingest"
	"github.com/ternarybob/kengetal/internal/models"
	"github.com/ternarybob/kengetal/internal/services/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyse a spreadsheet without starting the server",
	Long:  `Parses a csv, xlsx, SpreadsheetML, json or yaml file, computes the ratios and prints them as a table or writes a markdown, html or pdf report.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeFormat  string
	analyzeOutput  string
	analyzeProject string
	analyzeVerbose bool
	analyzeNoColor bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table", "Output format: table, md, html or pdf")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Write the report to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "", "Project name shown in the report")
	analyzeCmd.Flags().BoolVar(&analyzeVerbose, "verbose", false, "Log at debug level")
	analyzeCmd.Flags().BoolVar(&analyzeNoColor, "no-color", false, "Disable colors in table output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Keep stdout clean for the report unless asked otherwise
	level := "warn"
	if analyzeVerbose {
		level = "debug"
	}
	if err := loadConfig(level); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	table, err := ingest.Parse(filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	application, err := app.NewOffline(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	analysis, err := application.AnalysisService.AnalyzeTable(context.Background(), &models.TableAnalysisRequest{
		Source:  filepath.Base(path),
		Headers: table.Headers,
		Rows:    table.Rows,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeOutput != "" {
		f, err := os.Create(analyzeOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", analyzeOutput, err)
		}
		defer f.Close()
		out = f
	}

	if analyzeFormat == "table" {
		report.RenderTable(out, analysis.Result, !analyzeNoColor && analyzeOutput == "")
		return nil
	}

	format, err := report.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	return writeReport(out, application.ReportService, format, &models.Analysis{
		ID:        common.NewAnalysisID(),
		ProjectID: analyzeProject,
		Source:    filepath.Base(path),
		Mapping:   analysis.Mapping,
		Data:      analysis.Data,
		Result:    *analysis.Result,
		CreatedAt: time.Now(),
	})
}

func writeReport(w io.Writer, reports *report.Service, format report.Format, analysis *models.Analysis) error {
	rendered, err := reports.Render(analysis, format)
	if err != nil {
		return err
	}
	_, err = w.Write(rendered.Content)
	return err
}
