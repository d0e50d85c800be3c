// Package loader extracts plain text from documents, one page record per
// page. Embedded image payloads are never retained; only their presence
// is recorded so downstream prompts can mention them.
package loader

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Page is a single page of extracted document text.
type Page struct {
	Text       string
	ImageCount int
	Source     string
	Page       int // zero-based
	TotalPages int
}

// LoadError reports a document that could not be parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load document %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Options controls directory loading.
type Options struct {
	// SilentErrors logs and skips files that fail to parse instead of
	// aborting the whole batch.
	SilentErrors bool
}

// LoadFile dispatches on the file extension and returns the ordered page
// records of a single document. Unsupported extensions and malformed
// documents fail with a LoadError.
func LoadFile(path string) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	case ".xlsx":
		return loadXLSX(path)
	case ".md", ".markdown":
		return loadMarkdown(path)
	case ".txt":
		return loadText(path)
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("unsupported file format %q", filepath.Ext(path))}
	}
}

// LoadDir applies LoadFile to every supported file under dir, recursively,
// in lexical order. A per-file failure aborts the batch unless
// opts.SilentErrors is set, in which case it is logged and skipped.
func LoadDir(dir string, opts Options) ([]Page, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExt(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	var pages []Page
	for _, path := range paths {
		filePages, err := LoadFile(path)
		if err != nil {
			if opts.SilentErrors {
				log.Warn().Err(err).Str("path", path).Msg("Skipping document")
				continue
			}
			return nil, err
		}
		pages = append(pages, filePages...)
	}
	return pages, nil
}

func supportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".xlsx", ".md", ".markdown", ".txt":
		return true
	}
	return false
}
