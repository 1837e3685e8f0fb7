package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
)

// Document is the extraction result for one file.
type Document struct {
	Title    string
	Text     string
	Metadata map[string]any
}

// Extract pulls plain text and metadata out of a file based on its
// extension. Unknown extensions return an error; callers treat that as
// a metadata-only document.
func Extract(path, ext string) (Document, error) {
	switch strings.ToLower(ext) {
	case ".md":
		return extractMarkdown(path)
	case ".txt", ".xml", ".json":
		return extractPlain(path)
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	case ".html", ".htm":
		return extractHTML(path)
	}
	return Document{}, fmt.Errorf("no text extractor for %q", ext)
}

func extractPlain(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Document{
		Title: stemOf(path),
		Text:  string(raw),
	}, nil
}

// extractMarkdown strips YAML front matter into metadata and takes the
// first ATX heading as the title, falling back to the file stem.
func extractMarkdown(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(string(raw)), &meta)
	if err != nil {
		// Broken front matter is not fatal; index the raw body.
		body = raw
		meta = nil
	}
	if len(meta) == 0 {
		meta = nil
	}

	doc := Document{
		Title:    stemOf(path),
		Text:     string(body),
		Metadata: meta,
	}
	if title, ok := meta["title"].(string); ok && title != "" {
		doc.Title = title
	} else if h := firstHeading(string(body)); h != "" {
		doc.Title = h
	}
	return doc, nil
}

func firstHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
