package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissingCollection(t *testing.T) {
	c, err := NewCollectionFile(t.TempDir())
	require.NoError(t, err)

	var out []string
	assert.False(t, c.Read("nothing", &out))
	assert.Nil(t, out)
}

func TestWriteReadRoundtrip(t *testing.T) {
	c, err := NewCollectionFile(t.TempDir())
	require.NoError(t, err)

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, c.Write("counts", in))

	out := make(map[string]int)
	require.True(t, c.Read("counts", &out))
	assert.Equal(t, in, out)
}

func TestReadCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCollectionFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{{{"), 0o644))

	out := []string{"untouched"}
	assert.False(t, c.Read("bad", &out))
	assert.Equal(t, []string{"untouched"}, out)
}

func TestRemoveIsIdempotent(t *testing.T) {
	c, err := NewCollectionFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Write("tmp", []int{1}))
	require.NoError(t, c.Remove("tmp"))
	require.NoError(t, c.Remove("tmp"))

	var out []int
	assert.False(t, c.Read("tmp", &out))
}

func TestNewCollectionFileCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := NewCollectionFile(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
