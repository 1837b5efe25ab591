package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func TestReplaceReferences(t *testing.T) {
	logger := createTestLogger()
	values := map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-123",
		"DATA_DIR":          "/var/lib/kengetal",
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"no references", "plain value", "plain value"},
		{"single", "{ANTHROPIC_API_KEY}", "sk-ant-123"},
		{"embedded", "{DATA_DIR}/analyses", "/var/lib/kengetal/analyses"},
		{"unknown stays", "{MISSING}", "{MISSING}"},
		{"invalid syntax", "{not valid}", "{not valid}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReplaceReferences(tt.input, values, logger))
		})
	}
}

func TestReplaceInStruct_Config(t *testing.T) {
	logger := createTestLogger()
	cfg := NewDefaultConfig()
	cfg.Claude.APIKey = "{CLAUDE_KEY}"
	cfg.Storage.Badger.Path = "{DATA_DIR}/db"
	cfg.Logging.Output = []string{"{LOG_TARGET}", "file"}

	values := map[string]string{
		"CLAUDE_KEY": "sk-ant-xyz",
		"DATA_DIR":   "/srv/kengetal",
		"LOG_TARGET": "stdout",
	}

	require.NoError(t, ReplaceInStruct(cfg, values, logger))
	assert.Equal(t, "sk-ant-xyz", cfg.Claude.APIKey)
	assert.Equal(t, "/srv/kengetal/db", cfg.Storage.Badger.Path)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestReplaceInStruct_RequiresStructPointer(t *testing.T) {
	logger := createTestLogger()

	err := ReplaceInStruct(*NewDefaultConfig(), nil, logger)
	assert.Error(t, err)

	s := "value"
	err = ReplaceInStruct(&s, nil, logger)
	assert.Error(t, err)
}

func TestResolveReferences_FromEnvironment(t *testing.T) {
	t.Setenv("KENGETAL_TEST_GEMINI_KEY", "gm-456")

	cfg := NewDefaultConfig()
	cfg.Gemini.APIKey = "{KENGETAL_TEST_GEMINI_KEY}"

	require.NoError(t, ResolveReferences(cfg, createTestLogger()))
	assert.Equal(t, "gm-456", cfg.Gemini.APIKey)
}
