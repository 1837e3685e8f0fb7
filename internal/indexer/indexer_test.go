package indexer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docindexer/internal/iterator"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func statFile(t *testing.T, path string) iterator.FileInfo {
	t.Helper()
	fi, err := iterator.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return fi
}

func TestIndexFiles_MarkdownWithFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", `---
title: My Document
author: someone
---
# Ignored Heading

Body text here with five words.
`)

	idx := New(nil).IndexFiles([]iterator.FileInfo{statFile(t, path)})

	rec, ok := idx.Documents[path]
	if !ok {
		t.Fatalf("no record for %s; have %v", path, idx.Documents)
	}
	if rec.Title != "My Document" {
		t.Errorf("expected front matter title, got %q", rec.Title)
	}
	if rec.Metadata["author"] != "someone" {
		t.Errorf("front matter not captured: %v", rec.Metadata)
	}
	if rec.Words == 0 || rec.Chars == 0 {
		t.Errorf("text stats missing: %+v", rec)
	}
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.Extension != ".md" {
		t.Errorf("unexpected extension %q", rec.Extension)
	}
}

func TestIndexFiles_MarkdownHeadingTitle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.md", "# First Heading\n\ntext\n")

	idx := New(nil).IndexFiles([]iterator.FileInfo{statFile(t, path)})

	if got := idx.Documents[path].Title; got != "First Heading" {
		t.Errorf("expected heading title, got %q", got)
	}
}

func TestIndexFiles_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.txt", "one two three")

	idx := New(nil).IndexFiles([]iterator.FileInfo{statFile(t, path)})

	rec := idx.Documents[path]
	if rec.Title != "plain" {
		t.Errorf("expected file stem title, got %q", rec.Title)
	}
	if rec.Words != 3 || rec.Chars != 13 {
		t.Errorf("unexpected stats: words=%d chars=%d", rec.Words, rec.Chars)
	}
}

func TestIndexFiles_HTML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", `<html>
<head><title>Page Title</title><style>body{}</style></head>
<body>
<script>ignored()</script>
<h1>Welcome</h1>
<p>Visible paragraph.</p>
</body>
</html>`)

	idx := New(nil).IndexFiles([]iterator.FileInfo{statFile(t, path)})

	rec := idx.Documents[path]
	if rec.Title != "Page Title" {
		t.Errorf("expected html title, got %q", rec.Title)
	}
	if rec.Words == 0 {
		t.Error("no text extracted from html body")
	}
}

func TestIndexFiles_UnsupportedDegradesToMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "legacy.doc", "binary-ish")

	idx := New(nil).IndexFiles([]iterator.FileInfo{statFile(t, path)})

	rec := idx.Documents[path]
	if rec.Size == 0 || rec.Extension != ".doc" {
		t.Errorf("metadata record incomplete: %+v", rec)
	}
	if rec.Chars != 0 || rec.Words != 0 {
		t.Errorf("unexpected extraction for .doc: %+v", rec)
	}
}

func TestIndex_Save(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	idx := New(nil).IndexFiles([]iterator.FileInfo{statFile(t, path)})

	out := filepath.Join(dir, "index.json")
	if err := idx.Save(out); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var loaded Index
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("parse saved index: %v", err)
	}
	if len(loaded.Documents) != 1 {
		t.Errorf("expected 1 document, got %d", len(loaded.Documents))
	}
}

func TestFirstHeading(t *testing.T) {
	if got := firstHeading("intro\n## Deep Title\ntext"); got != "Deep Title" {
		t.Errorf("expected %q, got %q", "Deep Title", got)
	}
	if got := firstHeading("no headings at all"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
