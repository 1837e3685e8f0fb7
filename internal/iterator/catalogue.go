package iterator

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// catalogueEntry is one file record in a catalogue. Entries may also be
// bare string paths; see loadCatalogue.
type catalogueEntry struct {
	Path      string  `json:"path"`
	Size      int64   `json:"size"`
	Modified  float64 `json:"modified"` // unix seconds
	Extension string  `json:"extension"`
}

type catalogueDoc struct {
	Files []json.RawMessage `json:"files"`
}

// loadCatalogue reads a catalogue JSON file and appends its entries to
// the iterator's file list. Entries whose files no longer exist are
// skipped; a record with full metadata is trusted without re-statting.
func (it *Iterator) loadCatalogue(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalogue %s: %w", path, err)
	}
	var doc catalogueDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse catalogue %s: %w", path, err)
	}

	for _, entry := range doc.Files {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			fi, err := Stat(name)
			if err != nil {
				it.log.Warn("catalogue entry missing on disk", "path", name)
				continue
			}
			if it.filter.Matches(fi) {
				it.files = append(it.files, fi)
			}
			continue
		}

		var rec catalogueEntry
		if err := json.Unmarshal(entry, &rec); err != nil || rec.Path == "" {
			it.log.Warn("skipping malformed catalogue entry", "catalogue", path)
			continue
		}
		if st, err := os.Stat(rec.Path); err != nil || st.IsDir() {
			it.log.Warn("catalogue entry missing on disk", "path", rec.Path)
			continue
		}
		var fi FileInfo
		if rec.Size > 0 || rec.Extension != "" {
			fi = FileInfo{
				Path:      rec.Path,
				Size:      rec.Size,
				Modified:  unixFloat(rec.Modified),
				Extension: rec.Extension,
			}
		} else {
			var err error
			fi, err = Stat(rec.Path)
			if err != nil {
				continue
			}
		}
		if it.filter.Matches(fi) {
			it.files = append(it.files, fi)
		}
	}

	it.log.Info("loaded catalogue", "path", path, "files", len(it.files))
	return nil
}

func unixFloat(seconds float64) time.Time {
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// CatalogueBuilder accumulates file records for later replay.
type CatalogueBuilder struct {
	entries []catalogueEntry
}

func NewCatalogueBuilder() *CatalogueBuilder {
	return &CatalogueBuilder{}
}

// Add records one file.
func (b *CatalogueBuilder) Add(fi FileInfo) {
	b.entries = append(b.entries, catalogueEntry{
		Path:      fi.AbsolutePath(),
		Size:      fi.Size,
		Modified:  float64(fi.Modified.UnixNano()) / 1e9,
		Extension: fi.Extension,
	})
}

// AddAll records every file the iterator discovers.
func (b *CatalogueBuilder) AddAll(it *Iterator) error {
	files, err := it.Files()
	if err != nil {
		return err
	}
	for _, fi := range files {
		b.Add(fi)
	}
	return nil
}

// Len returns the number of recorded files.
func (b *CatalogueBuilder) Len() int {
	return len(b.entries)
}

// Save writes the catalogue as indented JSON.
func (b *CatalogueBuilder) Save(path string) error {
	doc := struct {
		Files []catalogueEntry `json:"files"`
	}{Files: b.entries}
	if doc.Files == nil {
		doc.Files = []catalogueEntry{}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalogue: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write catalogue %s: %w", path, err)
	}
	return nil
}
