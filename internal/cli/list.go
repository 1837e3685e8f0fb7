package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/iterator"
)

// NewListCmd builds the list command: print the files discovery would
// process, optionally recording them as a catalogue for later runs.
func NewListCmd(a *app) *cobra.Command {
	d := newDiscoveryFlags(a.mgr.Settings())
	var writeCatalogue string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the files matching the discovery options",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("list", changedArgs(cmd)); err != nil {
				return err
			}

			files, err := discoverFiles(a, d)
			if err != nil {
				return err
			}
			for _, fi := range files {
				fmt.Fprintln(cmd.OutOrStdout(), fi.Path)
			}
			a.log.Info("matched", "files", len(files))

			if writeCatalogue == "" || a.dryRun {
				return nil
			}
			b := iterator.NewCatalogueBuilder()
			for _, fi := range files {
				b.Add(fi)
			}
			if err := b.Save(writeCatalogue); err != nil {
				return err
			}
			a.log.Info("catalogue written", "path", writeCatalogue, "files", b.Len())
			return nil
		},
	}

	d.register(cmd)
	cmd.Flags().StringVar(&writeCatalogue, "write-catalogue", "", "save the matched files as a catalogue JSON file")
	return cmd
}
