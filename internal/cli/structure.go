package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/iterator"
	"github.com/dgallion1/docindexer/internal/structure"
)

// NewStructureCmd builds the structure command: parse markdown files
// into structure trees and save them as JSON.
func NewStructureCmd(a *app) *cobra.Command {
	d := newDiscoveryFlags(a.mgr.Settings())
	omitProps := a.mgr.Settings().OmitProperties

	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Parse markdown files into structure trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("structure", changedArgs(cmd)); err != nil {
				return err
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

			omit := splitProperties(omitProps)
			results := forEachFile(files, 0, func(fi iterator.FileInfo) error {
				return writeStructure(fi.Path, outputPath(fi.Path, d.outputFolder, ".structure.json"), omit)
			})
			return reportResults(a, "structure", results)
		},
	}

	d.register(cmd)
	cmd.Flags().StringVar(&omitProps, "omit-properties", omitProps, "comma-separated property names to drop from the output")
	return cmd
}

func writeStructure(src, dst string, omit []string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	doc, err := structure.NewOrganizer().Organize(string(data))
	if err != nil {
		return fmt.Errorf("organize %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := structure.Save(out, doc, omit); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}

func splitProperties(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// outputPath places a derived file next to its source, or under the
// output folder when one is configured.
func outputPath(src, outputFolder, suffix string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(src)
	if outputFolder != "" {
		dir = outputFolder
	}
	return filepath.Join(dir, stem+suffix)
}
