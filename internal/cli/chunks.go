package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/chunk"
	"github.com/dgallion1/docindexer/internal/config"
	"github.com/dgallion1/docindexer/internal/iterator"
	"github.com/dgallion1/docindexer/internal/structure"
)

// chunksOutput is the on-disk shape of a chunks run: the plan that was
// made and the chunks it produced.
type chunksOutput struct {
	Plan   *chunk.Plan   `json:"plan"`
	Chunks []chunk.Chunk `json:"chunks"`
}

// NewChunksCmd builds the chunks command: plan and generate text
// chunks from markdown files or a saved structure tree.
func NewChunksCmd(a *app) *cobra.Command {
	d := newDiscoveryFlags(a.mgr.Settings())
	var structureFile string

	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "Plan and generate text chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("chunks", changedArgs(cmd)); err != nil {
				return err
			}

			cfg, err := chunkConfig(a.mgr.Settings())
			if err != nil {
				return err
			}

			if structureFile != "" {
				if a.dryRun {
					fmt.Fprintln(cmd.OutOrStdout(), structureFile)
					return nil
				}
				dst := outputPath(structureFile, d.outputFolder, ".chunks.json")
				return chunkStructureFile(a, cfg, structureFile, dst)
			}

			files, err := discoverMarkdown(a, d)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				a.log.Warn("no markdown files matched")
				return nil
			}
			if a.dryRun {
				for _, fi := range files {
					fmt.Fprintln(cmd.OutOrStdout(), fi.Path)
				}
				return nil
			}

			results := forEachFile(files, 0, func(fi iterator.FileInfo) error {
				return chunkMarkdownFile(a, cfg, fi.Path, outputPath(fi.Path, d.outputFolder, ".chunks.json"))
			})
			return reportResults(a, "chunks", results)
		},
	}

	d.register(cmd)
	f := cmd.Flags()
	s := a.mgr.Settings()
	f.StringVar(&structureFile, "structure-file", "", "chunk a previously saved structure tree instead of markdown")
	f.IntVar(&s.MinChunkSize, "min-chunk-size", s.MinChunkSize, "merge sibling elements smaller than this")
	f.IntVar(&s.MaxChunkSize, "max-chunk-size", s.MaxChunkSize, "split elements larger than this")
	f.IntVar(&s.ChunkOverlap, "chunk-overlap", s.ChunkOverlap, "characters of overlap between split chunks")
	f.Float64Var(&s.SizeTolerance, "size-tolerance", s.SizeTolerance, "fractional allowance over the maximum size")
	return cmd
}

// chunkConfig lifts the chunking settings into a planner config,
// rejecting bounds the planner cannot work with.
func chunkConfig(s *config.Settings) (chunk.Config, error) {
	cfg := chunk.Config{
		MinChunkSize:  s.MinChunkSize,
		MaxChunkSize:  s.MaxChunkSize,
		ChunkOverlap:  s.ChunkOverlap,
		SizeTolerance: s.SizeTolerance,
	}
	if cfg.MinChunkSize <= 0 || cfg.MaxChunkSize <= 0 {
		return cfg, fmt.Errorf("chunk sizes must be positive (min %d, max %d)", cfg.MinChunkSize, cfg.MaxChunkSize)
	}
	if cfg.MinChunkSize > cfg.MaxChunkSize {
		return cfg, fmt.Errorf("min chunk size %d exceeds max chunk size %d", cfg.MinChunkSize, cfg.MaxChunkSize)
	}
	return cfg, nil
}

func chunkMarkdownFile(a *app, cfg chunk.Config, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	doc, err := structure.NewOrganizer().Organize(string(data))
	if err != nil {
		return fmt.Errorf("organize %s: %w", src, err)
	}
	return writeChunks(a, cfg, doc, dst)
}

func chunkStructureFile(a *app, cfg chunk.Config, src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	defer f.Close()
	doc, err := structure.Load(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", src, err)
	}
	return writeChunks(a, cfg, doc, dst)
}

func writeChunks(a *app, cfg chunk.Config, doc *structure.Node, dst string) error {
	plan, chunks := chunk.NewPlanner(cfg, a.log).ProcessDocument(doc)
	if chunks == nil {
		chunks = []chunk.Chunk{}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(chunksOutput{Plan: plan, Chunks: chunks}); err != nil {
		return fmt.Errorf("encode chunks for %s: %w", dst, err)
	}
	return nil
}
