package loader

import (
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
)

// loadDOCX extracts the document body as a single page record. DOCX has
// no page boundaries, so the whole document is page zero.
func loadDOCX(path string) ([]Page, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer r.Close()

	var text strings.Builder
	for _, paragraph := range strings.Split(r.Editable().GetContent(), "\n") {
		paragraph = strings.TrimSpace(stripTags(paragraph))
		if paragraph == "" {
			continue
		}
		text.WriteString(paragraph)
		text.WriteString("\n\n")
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, nil
	}
	return []Page{{
		Text:       text.String(),
		Source:     path,
		Page:       0,
		TotalPages: 1,
	}}, nil
}

// loadXLSX maps each sheet to a page record, rows joined with newlines
// and cells with tabs.
func loadXLSX(path string) ([]Page, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var pages []Page
	total := len(f.Sheets)
	for i, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(sheet.Name + "\n")
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			text.WriteString(strings.Join(cells, "\t"))
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == sheet.Name {
			continue
		}
		pages = append(pages, Page{
			Text:       text.String(),
			Source:     path,
			Page:       i,
			TotalPages: total,
		})
	}
	return pages, nil
}

// stripTags removes any inline XML markup the docx library leaves in
// paragraph content.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
