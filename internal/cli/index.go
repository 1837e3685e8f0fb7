package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/indexer"
)

// NewIndexCmd builds the index command: extract text and metadata
// from discovered files and write a document index.
func NewIndexCmd(a *app) *cobra.Command {
	d := newDiscoveryFlags(a.mgr.Settings())
	var output string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a metadata index of discovered documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("index", changedArgs(cmd)); err != nil {
				return err
			}

			files, err := discoverFiles(a, d)
			if err != nil {
				return err
			}
			if a.dryRun {
				for _, fi := range files {
					fmt.Fprintln(cmd.OutOrStdout(), fi.Path)
				}
				return nil
			}

			idx := indexer.New(a.log).IndexFiles(files)
			dst := output
			if dst == "" {
				dst = outputPath("index.json", d.outputFolder, ".json")
			}
			if err := idx.Save(dst); err != nil {
				return err
			}
			a.log.Info("index written", "path", dst, "documents", len(idx.Documents))
			return nil
		},
	}

	d.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "index file to write (default index.json)")
	return cmd
}
