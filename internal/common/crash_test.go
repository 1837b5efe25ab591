package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	original := CrashLogDir
	t.Cleanup(func() { CrashLogDir = original })

	dir := filepath.Join(t.TempDir(), "logs")
	InstallCrashHandler(dir)
	assert.DirExists(t, dir)

	path := WriteCrashFile("boom", GetStackTrace())
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "crash-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)
	assert.Contains(t, report, "KENGETAL CRASH REPORT")
	assert.Contains(t, report, "boom")
	assert.Contains(t, report, "TestWriteCrashFile")
}
