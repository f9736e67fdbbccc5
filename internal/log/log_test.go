package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cleaned := false
	func() {
		defer RecoverPanic(dir, "worker", func() { cleaned = true })
		panic("boom")
	}()
	assert.True(t, cleaned)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "daedalus-panic-worker-"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Panic in worker: boom")
	assert.Contains(t, string(data), "Stack Trace:")
}

func TestRecoverPanicNoPanic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cleaned := false
	func() {
		defer RecoverPanic(dir, "quiet", func() { cleaned = true })
	}()
	assert.False(t, cleaned)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
