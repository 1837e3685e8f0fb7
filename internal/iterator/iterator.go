// Package iterator discovers files to process: directory scans with
// filtering and ordering, single-file mode, and catalogue replay.
package iterator

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// SupportedExtensions is the fixed set of file types the pipeline can
// ingest. Discovery drops everything else before user filters run.
var SupportedExtensions = []string{
	".txt", ".md", ".pdf", ".docx", ".doc",
	".html", ".htm", ".xml", ".json",
}

// FileInfo describes one discovered file.
type FileInfo struct {
	Path      string
	Size      int64
	Modified  time.Time
	Extension string
}

// Name returns the base name of the file.
func (f FileInfo) Name() string {
	return filepath.Base(f.Path)
}

// AbsolutePath returns the absolute form of the file's path, falling
// back to the stored path when resolution fails.
func (f FileInfo) AbsolutePath() string {
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		return f.Path
	}
	return abs
}

// Stat builds a FileInfo from the filesystem.
func Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("stat %s: is a directory", path)
	}
	return FileInfo{
		Path:      path,
		Size:      st.Size(),
		Modified:  st.ModTime(),
		Extension: strings.ToLower(filepath.Ext(path)),
	}, nil
}

// Filter accepts or rejects discovered files.
type Filter interface {
	Matches(FileInfo) bool
}

// ExtensionFilter keeps files whose extension is in the allowed set.
// Extensions normalize to lowercase with a leading dot.
type ExtensionFilter struct {
	allowed map[string]bool
}

func NewExtensionFilter(extensions []string) *ExtensionFilter {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return &ExtensionFilter{allowed: allowed}
}

func (f *ExtensionFilter) Matches(fi FileInfo) bool {
	return f.allowed[fi.Extension]
}

// PatternFilter matches file base names against a glob or regular
// expression pattern.
type PatternFilter struct {
	glob  string
	regex *regexp.Regexp
}

// NewPatternFilter compiles a pattern. With useRegex false the pattern
// is a shell glob; otherwise a Go regular expression searched anywhere
// in the name.
func NewPatternFilter(pattern string, useRegex bool) (*PatternFilter, error) {
	if !useRegex {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		return &PatternFilter{glob: pattern}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return &PatternFilter{regex: re}, nil
}

func (f *PatternFilter) Matches(fi FileInfo) bool {
	if f.regex != nil {
		return f.regex.MatchString(fi.Name())
	}
	ok, _ := filepath.Match(f.glob, fi.Name())
	return ok
}

// SizeFilter keeps files whose size in bytes is within [Min, Max].
// A zero Max means unbounded.
type SizeFilter struct {
	Min int64
	Max int64
}

func (f SizeFilter) Matches(fi FileInfo) bool {
	if fi.Size < f.Min {
		return false
	}
	if f.Max > 0 && fi.Size > f.Max {
		return false
	}
	return true
}

// DateFilter keeps files modified within [Min, Max]. Zero bounds are
// open.
type DateFilter struct {
	Min time.Time
	Max time.Time
}

func (f DateFilter) Matches(fi FileInfo) bool {
	if !f.Min.IsZero() && fi.Modified.Before(f.Min) {
		return false
	}
	if !f.Max.IsZero() && fi.Modified.After(f.Max) {
		return false
	}
	return true
}

// CompositeFilter requires every member filter to match.
type CompositeFilter struct {
	Filters []Filter
}

func (f CompositeFilter) Matches(fi FileInfo) bool {
	for _, member := range f.Filters {
		if !member.Matches(fi) {
			return false
		}
	}
	return true
}

// Options configures file discovery. Exactly one source wins:
// Catalogue, then FileName, then SourceDir.
type Options struct {
	SourceDir string
	FileName  string
	Catalogue string

	Pattern  string
	UseRegex bool
	MinSize  int64
	MaxSize  int64
	MinDate  time.Time
	MaxDate  time.Time

	Recursive     bool
	MaxDepth      int // negative means unlimited
	IncludeHidden bool

	// Limit truncates the discovered list before sorting, keeping the
	// first files in scan order.
	Limit int

	SortBy   string // "name", "date", "size"
	SortDesc bool
	Random   bool
}

// DefaultOptions scans the current directory recursively without limits.
func DefaultOptions() Options {
	return Options{
		SourceDir: ".",
		Recursive: true,
		MaxDepth:  -1,
		SortBy:    "name",
	}
}

// Iterator discovers files lazily and serves them as a stable list.
type Iterator struct {
	opts   Options
	filter Filter
	log    *slog.Logger

	files  []FileInfo
	loaded bool
}

// New builds an iterator. Returns an error when a configured pattern
// does not compile. log may be nil.
func New(opts Options, log *slog.Logger) (*Iterator, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	filters := []Filter{NewExtensionFilter(SupportedExtensions)}
	if opts.Pattern != "" {
		pf, err := NewPatternFilter(opts.Pattern, opts.UseRegex)
		if err != nil {
			return nil, err
		}
		filters = append(filters, pf)
	}
	if opts.MinSize > 0 || opts.MaxSize > 0 {
		filters = append(filters, SizeFilter{Min: opts.MinSize, Max: opts.MaxSize})
	}
	if !opts.MinDate.IsZero() || !opts.MaxDate.IsZero() {
		filters = append(filters, DateFilter{Min: opts.MinDate, Max: opts.MaxDate})
	}
	return &Iterator{
		opts:   opts,
		filter: CompositeFilter{Filters: filters},
		log:    log,
	}, nil
}

// Files discovers, limits, and orders the file list. The discovery runs
// once; later calls return the same slice.
func (it *Iterator) Files() ([]FileInfo, error) {
	if it.loaded {
		return it.files, nil
	}
	if err := it.discover(); err != nil {
		return nil, err
	}

	// The limit applies in scan order, before sorting.
	if it.opts.Limit > 0 && it.opts.Limit < len(it.files) {
		it.files = it.files[:it.opts.Limit]
	}
	it.order()

	it.loaded = true
	return it.files, nil
}

// Count returns the number of discovered files.
func (it *Iterator) Count() (int, error) {
	files, err := it.Files()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Reset discards discovery state so the next Files call rescans.
func (it *Iterator) Reset() {
	it.files = nil
	it.loaded = false
}

func (it *Iterator) discover() error {
	it.files = nil

	if it.opts.Catalogue != "" {
		return it.loadCatalogue(it.opts.Catalogue)
	}

	if it.opts.FileName != "" {
		fi, err := Stat(it.opts.FileName)
		if err != nil {
			it.log.Warn("file not found", "path", it.opts.FileName, "error", err)
			return nil
		}
		if it.filter.Matches(fi) {
			it.files = append(it.files, fi)
		}
		return nil
	}

	dir := it.opts.SourceDir
	if dir == "" {
		dir = "."
	}
	it.scanDir(dir, 0)
	return nil
}

func (it *Iterator) scanDir(dir string, depth int) {
	if it.opts.MaxDepth >= 0 && depth > it.opts.MaxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		it.log.Warn("cannot read directory", "path", dir, "error", err)
		return
	}
	for _, entry := range entries {
		if !it.opts.IncludeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if it.opts.Recursive {
				it.scanDir(path, depth+1)
			}
			continue
		}
		fi, err := Stat(path)
		if err != nil {
			it.log.Warn("cannot stat file", "path", path, "error", err)
			continue
		}
		if it.filter.Matches(fi) {
			it.files = append(it.files, fi)
		}
	}
}

func (it *Iterator) order() {
	if it.opts.Random {
		rand.Shuffle(len(it.files), func(i, j int) {
			it.files[i], it.files[j] = it.files[j], it.files[i]
		})
		return
	}

	files := it.files
	var less func(i, j int) bool
	desc := it.opts.SortDesc
	switch it.opts.SortBy {
	case "date":
		less = func(i, j int) bool { return files[i].Modified.Before(files[j].Modified) }
	case "size":
		less = func(i, j int) bool { return files[i].Size < files[j].Size }
	case "name":
		less = func(i, j int) bool { return files[i].Name() < files[j].Name() }
	default:
		// Unknown keys fall back to path order, always ascending.
		less = func(i, j int) bool { return files[i].Path < files[j].Path }
		desc = false
	}
	if desc {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.SliceStable(files, less)
}
