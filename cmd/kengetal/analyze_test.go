package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const balansCSV = `Omzet;Nettowinst;Eigen vermogen;Totaal activa;Vlottende activa;Kortlopende schulden
1000000;80000;400000;1000000;300000;200000
`

// runCLI executes the root command with args and offline LLM settings
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"KENGETAL_GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GEMINI_API_KEY", "KENGETAL_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("KENGETAL_LOG_OUTPUT", "stdout")

	configFiles = nil
	analyzeFormat, analyzeOutput, analyzeProject = "table", "", ""
	analyzeNoColor = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeBalans(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "balans.csv")
	require.NoError(t, os.WriteFile(path, []byte(balansCSV), 0644))
	return path
}

func TestAnalyze_Table(t *testing.T) {
	out, err := runCLI(t, "analyze", writeBalans(t), "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Rentabiliteit")
	assert.Contains(t, out, "Liquiditeit")
	assert.Contains(t, out, "Solvabiliteit")
}

func TestAnalyze_MarkdownReportToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "rapport.md")

	_, err := runCLI(t, "analyze", writeBalans(t), "--format", "md", "--out", target, "--project", "Bakkerij")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Financiële analyse")
	assert.Contains(t, string(data), "Bakkerij")
	assert.Contains(t, string(data), "balans.csv")
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := runCLI(t, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = runCLI(t, "analyze", writeBalans(t), "--format", "docx")
	assert.Error(t, err)

	_, err = runCLI(t, "analyze")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Kengetal version")
}
