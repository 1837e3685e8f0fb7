package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dgallion1/docindexer/internal/config"
	"github.com/dgallion1/docindexer/internal/iterator"
)

// discoveryFlags binds the file discovery options shared by the
// structure, chunks, index and list commands. Values are seeded from
// the layered configuration so unset flags fall through to it.
type discoveryFlags struct {
	sourceFolder  string
	fileName      string
	catalogue     string
	outputFolder  string
	pattern       string
	useRegex      bool
	recursive     bool
	maxDepth      int
	includeHidden bool
	limit         int
	sortBy        string
	sortDesc      bool
	random        bool
}

func newDiscoveryFlags(s *config.Settings) *discoveryFlags {
	return &discoveryFlags{
		sourceFolder:  s.SourceFolder,
		fileName:      s.FileName,
		catalogue:     s.Catalogue,
		outputFolder:  s.OutputFolder,
		pattern:       s.Pattern,
		useRegex:      s.UseRegex,
		recursive:     s.Recursive,
		maxDepth:      s.MaxDepth,
		includeHidden: s.IncludeHidden,
		limit:         s.Limit,
		sortBy:        s.SortBy,
		sortDesc:      s.SortDesc,
		random:        s.Random,
	}
}

func (d *discoveryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&d.sourceFolder, "source-folder", d.sourceFolder, "directory to scan for documents")
	f.StringVar(&d.fileName, "file-name", d.fileName, "process a single file instead of scanning")
	f.StringVar(&d.catalogue, "catalogue", d.catalogue, "read the file list from a catalogue JSON file")
	f.StringVar(&d.outputFolder, "output-folder", d.outputFolder, "directory for generated output files")
	f.StringVar(&d.pattern, "pattern", d.pattern, "filter file names by glob pattern")
	f.BoolVar(&d.useRegex, "regex", d.useRegex, "interpret --pattern as a regular expression")
	f.BoolVar(&d.recursive, "recursive", d.recursive, "descend into subdirectories")
	f.IntVar(&d.maxDepth, "max-depth", d.maxDepth, "maximum directory depth, -1 for unlimited")
	f.BoolVar(&d.includeHidden, "include-hidden", d.includeHidden, "include hidden files and directories")
	f.IntVar(&d.limit, "limit", d.limit, "stop after this many files, 0 for no limit")
	f.StringVar(&d.sortBy, "sort-by", d.sortBy, "sort files by name, date or size")
	f.BoolVar(&d.sortDesc, "desc", d.sortDesc, "sort in descending order")
	f.BoolVar(&d.random, "random", d.random, "shuffle files instead of sorting")
}

// argNames maps flag names to the underscore option names the
// argument schema uses.
var argNames = map[string]string{
	"source-folder":  "source_folder",
	"file-name":      "file_name",
	"catalogue":      "catalogue",
	"output-folder":  "output_folder",
	"pattern":        "pattern",
	"regex":          "use_regex",
	"recursive":      "recursive",
	"max-depth":      "max_depth",
	"include-hidden": "include_hidden",
	"limit":          "limit",
	"sort-by":        "sort_by",
	"desc":           "sort_desc",
	"random":         "random",
	"debug":          "debug",
	"dry-run":        "dry_run",

	"omit-properties":      "omit_properties",
	"structure-file":       "structure_file",
	"min-chunk-size":       "min_chunk_size",
	"max-chunk-size":       "max_chunk_size",
	"chunk-overlap":        "chunk_overlap",
	"size-tolerance":       "size_tolerance",
	"output":               "output",
	"write-catalogue":      "write_catalogue",
	"source":               "source",
	"create-local-config":  "create_local_config",
	"create-global-config": "create_global_config",
	"listen-addr":          "listen_addr",
	"api-token":            "api_token",
}

// changedArgs collects the options the user set explicitly, keyed by
// their schema names, so validation only sees what was actually given.
func changedArgs(cmd *cobra.Command) map[string]any {
	args := map[string]any{}
	visit := func(f *pflag.Flag) {
		name, ok := argNames[f.Name]
		if !ok {
			return
		}
		args[name] = flagValue(f)
	}
	cmd.Flags().Visit(visit)
	cmd.InheritedFlags().Visit(visit)
	return args
}

// flagValue converts a set flag to the JSON-shaped value the argument
// schema expects.
func flagValue(f *pflag.Flag) any {
	s := f.Value.String()
	switch f.Value.Type() {
	case "bool":
		v, _ := strconv.ParseBool(s)
		return v
	case "int", "int64":
		v, _ := strconv.Atoi(s)
		return v
	case "float64":
		v, _ := strconv.ParseFloat(s, 64)
		return v
	default:
		return s
	}
}

// validateArgs runs the schema check for a command and wraps failures
// with a usage hint.
func (a *app) validateArgs(command string, args map[string]any) error {
	if err := a.validator.ValidateCommand(command, args); err != nil {
		return fmt.Errorf("%w (run 'docindexer schema' to inspect the accepted options)", err)
	}
	return nil
}

// discoverFiles runs the iterator with the current flag values.
func discoverFiles(a *app, d *discoveryFlags) ([]iterator.FileInfo, error) {
	it, err := iterator.New(d.options(), a.log)
	if err != nil {
		return nil, err
	}
	return it.Files()
}

// discoverMarkdown narrows discovery to the files the markdown
// organizer can parse.
func discoverMarkdown(a *app, d *discoveryFlags) ([]iterator.FileInfo, error) {
	files, err := discoverFiles(a, d)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, fi := range files {
		switch fi.Extension {
		case ".md", ".txt":
			out = append(out, fi)
		default:
			a.log.Debug("skipping non-markdown file", "path", fi.Path)
		}
	}
	return out, nil
}

func (d *discoveryFlags) options() iterator.Options {
	return iterator.Options{
		SourceDir:     d.sourceFolder,
		FileName:      d.fileName,
		Catalogue:     d.catalogue,
		Pattern:       d.pattern,
		UseRegex:      d.useRegex,
		Recursive:     d.recursive,
		MaxDepth:      d.maxDepth,
		IncludeHidden: d.includeHidden,
		Limit:         d.limit,
		SortBy:        d.sortBy,
		SortDesc:      d.sortDesc,
		Random:        d.random,
	}
}
