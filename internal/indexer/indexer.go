// Package indexer builds metadata records for discovered documents:
// filesystem facts plus extracted text statistics and front matter.
package indexer

import (
	"encoding/json"
	"io"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dgallion1/docindexer/internal/iterator"
)

// Record is the index entry for one document.
type Record struct {
	ID        string         `json:"id"`
	Path      string         `json:"path"`
	Size      int64          `json:"size"`
	Modified  float64        `json:"modified"` // unix seconds
	Extension string         `json:"extension"`
	Title     string         `json:"title,omitempty"`
	Chars     int            `json:"chars"`
	Words     int            `json:"words"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Index maps document paths to their records.
type Index struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Documents   map[string]Record `json:"documents"`
}

// Indexer extracts text and assembles index records.
type Indexer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Indexer{log: log}
}

// IndexFiles builds an index over the given files. Extraction failures
// degrade to metadata-only records rather than failing the run.
func (ix *Indexer) IndexFiles(files []iterator.FileInfo) *Index {
	idx := &Index{
		GeneratedAt: time.Now().UTC(),
		Documents:   make(map[string]Record, len(files)),
	}
	for _, fi := range files {
		idx.Documents[fi.Path] = ix.indexFile(fi)
	}
	return idx
}

func (ix *Indexer) indexFile(fi iterator.FileInfo) Record {
	rec := Record{
		ID:        uuid.NewString(),
		Path:      fi.AbsolutePath(),
		Size:      fi.Size,
		Modified:  float64(fi.Modified.UnixNano()) / 1e9,
		Extension: fi.Extension,
	}

	doc, err := Extract(fi.Path, fi.Extension)
	if err != nil {
		ix.log.Warn("text extraction failed", "path", fi.Path, "error", err)
		return rec
	}
	rec.Title = doc.Title
	rec.Chars = utf8.RuneCountInString(doc.Text)
	rec.Words = len(strings.Fields(doc.Text))
	rec.Metadata = doc.Metadata
	return rec
}

// Save writes the index as indented JSON.
func (idx *Index) Save(path string) error {
	raw, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}
