package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "Plain text content.")

	pages, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Plain text content.", pages[0].Text)
	assert.Equal(t, path, pages[0].Source)
	assert.Equal(t, 0, pages[0].Page)
	assert.Equal(t, 1, pages[0].TotalPages)
}

func TestLoadFile_EmptyTextYieldsNoPages(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.txt", "   \n")

	pages, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoadFile_MarkdownStripsMarkup(t *testing.T) {
	path := writeFile(t, t.TempDir(), "readme.md", "# Title\n\nSome *emphasized* text with a [link](https://example.com).")

	pages, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Title")
	assert.Contains(t, pages[0].Text, "emphasized")
	assert.Contains(t, pages[0].Text, "link")
	assert.NotContains(t, pages[0].Text, "#")
	assert.NotContains(t, pages[0].Text, "*")
	assert.NotContains(t, pages[0].Text, "](")
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.bin", "binary")

	_, err := LoadFile(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
}

func TestLoadFile_MalformedPDF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.pdf", "this is not a pdf")

	_, err := LoadFile(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
}

func TestLoadDir_AbortsOnFirstFailureByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "Readable content.")
	bad := writeFile(t, dir, "bad.pdf", "garbage")

	_, err := LoadDir(dir, Options{})
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, bad, loadErr.Path)
}

func TestLoadDir_SilentModeSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "Readable content.")
	writeFile(t, dir, "bad.pdf", "garbage")

	pages, err := LoadDir(dir, Options{SilentErrors: true})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Readable content.", pages[0].Text)
}

func TestLoadDir_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, dir, "a.txt", "Top level.")
	writeFile(t, sub, "b.txt", "Nested.")
	writeFile(t, dir, "ignored.bin", "not a document")

	pages, err := LoadDir(dir, Options{})
	require.NoError(t, err)
	require.Len(t, pages, 2)
}
