package iterator

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name()
	}
	return out
}

func TestFiles_SupportedExtensionsOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "# hi")
	writeFile(t, dir, "notes.txt", "text")
	writeFile(t, dir, "binary.exe", "nope")
	writeFile(t, dir, "image.png", "nope")

	opts := DefaultOptions()
	opts.SourceDir = dir
	it, err := New(opts, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}

	got := names(files)
	if len(got) != 2 || got[0] != "doc.md" || got[1] != "notes.txt" {
		t.Errorf("unexpected files: %v", got)
	}
}

func TestFiles_RecursiveAndHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.md", "a")
	writeFile(t, dir, "sub/nested.md", "b")
	writeFile(t, dir, ".hidden.md", "c")
	writeFile(t, dir, ".secret/inside.md", "d")

	opts := DefaultOptions()
	opts.SourceDir = dir
	it, err := New(opts, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if got := names(files); len(got) != 2 || got[0] != "nested.md" || got[1] != "top.md" {
		t.Errorf("unexpected files: %v", got)
	}

	opts.IncludeHidden = true
	it2, _ := New(opts, nil)
	files, err = it2.Files()
	if err != nil {
		t.Fatalf("files with hidden: %v", err)
	}
	if len(files) != 4 {
		t.Errorf("expected 4 files with hidden included, got %v", names(files))
	}
}

func TestFiles_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "root.md", "a")
	writeFile(t, dir, "one/level1.md", "b")
	writeFile(t, dir, "one/two/level2.md", "c")

	opts := DefaultOptions()
	opts.SourceDir = dir
	opts.MaxDepth = 1
	it, err := New(opts, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if got := names(files); len(got) != 2 || got[0] != "level1.md" || got[1] != "root.md" {
		t.Errorf("unexpected files at depth 1: %v", got)
	}
}

func TestFiles_PatternGlobAndRegex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "report-2024.md", "a")
	writeFile(t, dir, "report-2025.md", "b")
	writeFile(t, dir, "summary.md", "c")

	opts := DefaultOptions()
	opts.SourceDir = dir
	opts.Pattern = "report-*.md"
	it, err := New(opts, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("glob matched %v", names(files))
	}

	opts.Pattern = `2025`
	opts.UseRegex = true
	it2, err := New(opts, nil)
	if err != nil {
		t.Fatalf("new regex: %v", err)
	}
	files, err = it2.Files()
	if err != nil {
		t.Fatalf("files regex: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "report-2025.md" {
		t.Errorf("regex matched %v", names(files))
	}

	opts.Pattern = `([unclosed`
	if _, err := New(opts, nil); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestFiles_SizeFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", "ab")
	writeFile(t, dir, "large.txt", "abcdefghij")

	opts := DefaultOptions()
	opts.SourceDir = dir
	opts.MinSize = 5
	it, _ := New(opts, nil)
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "large.txt" {
		t.Errorf("unexpected files: %v", names(files))
	}
}

func TestFiles_SortOrders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bbb.md", "medium")
	writeFile(t, dir, "aaa.md", "a much longer content body")
	writeFile(t, dir, "ccc.md", "s")

	load := func(opts Options) []string {
		t.Helper()
		it, err := New(opts, nil)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		files, err := it.Files()
		if err != nil {
			t.Fatalf("files: %v", err)
		}
		return names(files)
	}

	opts := DefaultOptions()
	opts.SourceDir = dir

	got := load(opts)
	if got[0] != "aaa.md" || got[2] != "ccc.md" {
		t.Errorf("name asc: %v", got)
	}

	opts.SortDesc = true
	got = load(opts)
	if got[0] != "ccc.md" || got[2] != "aaa.md" {
		t.Errorf("name desc: %v", got)
	}

	opts.SortDesc = false
	opts.SortBy = "size"
	got = load(opts)
	if got[0] != "ccc.md" || got[2] != "aaa.md" {
		t.Errorf("size asc: %v", got)
	}
}

func TestFiles_SingleFileMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.md", "content")
	writeFile(t, dir, "other.md", "ignored")

	opts := DefaultOptions()
	opts.FileName = path
	it, _ := New(opts, nil)
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "only.md" {
		t.Errorf("unexpected files: %v", names(files))
	}

	// A missing file is a warning, not an error.
	opts.FileName = filepath.Join(dir, "gone.md")
	it2, _ := New(opts, nil)
	files, err = it2.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", names(files))
	}
}

func TestCatalogue_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.md", "first")
	writeFile(t, dir, "two.txt", "second file")

	opts := DefaultOptions()
	opts.SourceDir = dir
	it, _ := New(opts, nil)

	builder := NewCatalogueBuilder()
	if err := builder.AddAll(it); err != nil {
		t.Fatalf("add all: %v", err)
	}
	if builder.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", builder.Len())
	}

	catPath := filepath.Join(dir, "catalogue.json")
	if err := builder.Save(catPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	replay := DefaultOptions()
	replay.Catalogue = catPath
	it2, _ := New(replay, nil)
	files, err := it2.Files()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := names(files); len(got) != 2 || got[0] != "one.md" || got[1] != "two.txt" {
		t.Errorf("unexpected replay files: %v", got)
	}
	if files[0].Size != 5 {
		t.Errorf("expected recorded size 5, got %d", files[0].Size)
	}
}

func TestCatalogue_StringEntriesAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	real := writeFile(t, dir, "real.md", "here")
	catPath := writeFile(t, dir, "cat.json",
		`{"files": ["`+real+`", "`+filepath.Join(dir, "missing.md")+`"]}`)

	opts := DefaultOptions()
	opts.Catalogue = catPath
	it, _ := New(opts, nil)
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "real.md" {
		t.Errorf("unexpected files: %v", names(files))
	}
}

func TestFiles_LimitBeforeSort(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "1")
	writeFile(t, dir, "b.md", "2")
	writeFile(t, dir, "c.md", "3")

	opts := DefaultOptions()
	opts.SourceDir = dir
	opts.Limit = 2
	it, _ := New(opts, nil)
	files, err := it.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("limit not applied: %v", names(files))
	}
}

func TestStat_Directory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Stat(dir); err == nil {
		t.Error("expected error statting a directory")
	}
}

func TestDateFilter(t *testing.T) {
	now := time.Now()
	fi := FileInfo{Modified: now}

	if !(DateFilter{Min: now.Add(-time.Hour)}).Matches(fi) {
		t.Error("file within open max range rejected")
	}
	if (DateFilter{Max: now.Add(-time.Hour)}).Matches(fi) {
		t.Error("file newer than max accepted")
	}
	if !(DateFilter{}).Matches(fi) {
		t.Error("open filter rejected file")
	}
}
