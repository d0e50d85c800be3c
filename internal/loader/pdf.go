package loader

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts one page record per PDF page. Embedded images are
// counted from the page's XObject resources but their payload is never
// read into memory.
func loadPDF(path string) (pages []Page, err error) {
	// The pdf package panics on some malformed content streams; turn
	// that into a LoadError naming the file.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &LoadError{Path: path, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		pages = append(pages, Page{
			Text:       text,
			ImageCount: countImages(page),
			Source:     path,
			Page:       i - 1,
			TotalPages: total,
		})
	}
	return pages, nil
}

func countImages(page pdf.Page) int {
	resources := page.Resources()
	if resources.IsNull() {
		return 0
	}
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return 0
	}
	count := 0
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}
