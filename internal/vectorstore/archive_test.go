package vectorstore

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractArchive_RoundTripsBuiltIndex(t *testing.T) {
	_, indexDir := buildStore(t, []Entry{entry("alpha", 0, []float32{1, 0, 0})})

	zipPath := filepath.Join(t.TempDir(), "index.zip")
	require.NoError(t, WriteArchive(zipPath, indexDir))

	dest := t.TempDir()
	extracted, err := ExtractArchive(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, DirName), extracted)

	store, err := Load(extracted)
	require.NoError(t, err)
	require.Equal(t, 1, store.Count())

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Chunk.Text)
}

func TestExtractArchive_MissingVectorstoreDirFails(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"readme.txt": "no index here"})

	_, err := ExtractArchive(zipPath, t.TempDir())
	require.Error(t, err)

	var loadErr *IndexLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestExtractArchive_NotAZipFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := ExtractArchive(path, t.TempDir())
	require.Error(t, err)

	var loadErr *IndexLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestExtractArchive_RejectsPathTraversal(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"../evil.txt": "escape attempt"})

	dest := filepath.Join(t.TempDir(), "dest")
	_, err := ExtractArchive(zipPath, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
}

func TestExtractArchive_ClearsStaleIndex(t *testing.T) {
	dest := t.TempDir()
	staleDir := filepath.Join(dest, DirName)
	require.NoError(t, os.MkdirAll(staleDir, 0o755))
	stale := filepath.Join(staleDir, "stale.bin")
	require.NoError(t, os.WriteFile(stale, []byte("old index"), 0o644))

	zipPath := writeZip(t, map[string]string{DirName + "/fresh.bin": "new index"})

	_, err := ExtractArchive(zipPath, dest)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(staleDir, "fresh.bin"))
	assert.NoError(t, err)
}
