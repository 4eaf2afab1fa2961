package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(path, []byte("original content"), 0644))

	err := PrependFile([]byte("header:"), path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "header:original content", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the staging file should have been renamed away")
}

func TestPrependFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, PrependFile([]byte{1, 2, 3}, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestPrependFileMissing(t *testing.T) {
	dir := t.TempDir()

	err := PrependFile([]byte("header"), filepath.Join(dir, "missing"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing should be staged")
}

func TestPrependFileCleansUp(t *testing.T) {
	dir := t.TempDir()

	// A directory opens fine, but can't be copied from.
	path := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(path, 0755))

	err := PrependFile([]byte("header"), path)
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the staging file should have been removed")
	assert.Equal(t, "data", entries[0].Name())
}
