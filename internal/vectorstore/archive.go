package vectorstore

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks a ZIP archive into dest and returns the path of
// the vectorstore directory it contained. Any stale vectorstore from a
// previous upload is removed first, so an old index can never leak into
// a new session. An archive without a vectorstore/ directory fails with
// IndexLoadError.
func ExtractArchive(zipPath, dest string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", &IndexLoadError{Dir: dest, Err: fmt.Errorf("open archive: %w", err)}
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}
	indexDir := filepath.Join(dest, DirName)
	if err := os.RemoveAll(indexDir); err != nil {
		return "", fmt.Errorf("clear stale index: %w", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, dest); err != nil {
			return "", err
		}
	}

	if _, err := os.Stat(indexDir); err != nil {
		return "", &IndexLoadError{Dir: dest, Err: fmt.Errorf("archive contains no %s/ directory", DirName)}
	}
	return indexDir, nil
}

func extractEntry(f *zip.File, dest string) error {
	target := filepath.Join(dest, filepath.FromSlash(f.Name))
	// Reject entries that would escape the extraction directory.
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction dir", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("read archive entry %q: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %q: %w", f.Name, err)
	}
	return nil
}

// WriteArchive zips an index directory into the archive layout the chat
// service consumes: every file placed under a top-level vectorstore/
// prefix.
func WriteArchive(zipPath, indexDir string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	err = filepath.WalkDir(indexDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(indexDir, path)
		if err != nil {
			return err
		}
		entry, err := w.Create(DirName + "/" + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(entry, src)
		return err
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	return w.Close()
}
