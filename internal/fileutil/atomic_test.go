package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "model.json")

	require.NoError(t, WriteFileAtomic(path, []byte("hello"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not remain")
}

func TestWriteAtomicKeepsOldFileOnFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, WriteFileAtomic(path, []byte("v1"), 0o644))

	err := WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type record struct {
		Epsilon float64 `json:"epsilon"`
		Episode int     `json:"episode"`
	}
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, WriteJSONAtomic(path, record{Epsilon: 0.5, Episode: 12}))

	var got record
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, record{Epsilon: 0.5, Episode: 12}, got)
}
