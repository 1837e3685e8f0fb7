package indexer

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// extractPDF concatenates the plain text of every page, separated by
// form feeds. Pages the library cannot render are skipped.
func extractPDF(path string) (Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}

	return Document{
		Title: stemOf(path),
		Text:  buf.String(),
	}, nil
}
