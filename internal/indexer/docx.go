package indexer

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDOCX flattens paragraph runs to plain text, one paragraph per
// blank-line-separated block. The first Heading1-styled paragraph, if
// any, becomes the title.
func extractDOCX(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("stat docx %s: %w", path, err)
	}
	parsed, err := docx.Parse(f, st.Size())
	if err != nil {
		return Document{}, fmt.Errorf("parse docx %s: %w", path, err)
	}

	doc := Document{Title: stemOf(path)}
	var parts []string
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if doc.Title == stemOf(path) && isHeading1(para) {
			doc.Title = text
		}
		parts = append(parts, text)
	}
	doc.Text = strings.Join(parts, "\n\n")
	return doc, nil
}

func isHeading1(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := para.Properties.Style.Val
	return strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1")
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
