package crashlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAppendsReport(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{dirs: []string{dir}}

	w.Write("middleware", "slice index out of range")
	w.Write("middleware", "second failure")

	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Source: middleware")
	assert.Contains(t, content, "slice index out of range")
	assert.Contains(t, content, "second failure")
	assert.Contains(t, content, "Stack Trace:")
}

func TestWriteFallsBackToNextDir(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("file, not a directory"), 0o644))
	writable := t.TempDir()

	w := &Writer{dirs: []string{blocked, writable}}
	w.Write("handler", "boom")

	assert.NoFileExists(t, filepath.Join(blocked, fileName))
	assert.FileExists(t, filepath.Join(writable, fileName))
}

func TestNewAppendsWorkingDirectory(t *testing.T) {
	w := New([]string{"/somewhere"})
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{"/somewhere", cwd}, w.dirs)
}
