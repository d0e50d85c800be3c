package loader

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func loadText(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []Page{{
		Text:       string(data),
		Source:     path,
		Page:       0,
		TotalPages: 1,
	}}, nil
}

// loadMarkdown parses the document and walks the AST collecting text
// content, so markup never ends up inside chunks.
func loadMarkdown(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	root := goldmark.New().Parser().Parse(text.NewReader(data))
	var b strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				b.Write(t.Segment.Value(data))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteString("\n")
				}
			}
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock {
			b.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	content := strings.TrimSpace(b.String())
	if content == "" {
		return nil, nil
	}
	return []Page{{
		Text:       content,
		Source:     path,
		Page:       0,
		TotalPages: 1,
	}}, nil
}
