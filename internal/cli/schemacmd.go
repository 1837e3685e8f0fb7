package cli

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/schema"
)

// NewSchemaCmd builds the schema command: print the JSON Schema the
// CLI validates its options against.
func NewSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the argument validation schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("schema", changedArgs(cmd)); err != nil {
				return err
			}
			_, err := cmd.OutOrStdout().Write(schema.Raw())
			return err
		},
	}
	return cmd
}
