package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewConfigCmd builds the config command: inspect the layered
// configuration and write starter config files.
func NewConfigCmd(a *app) *cobra.Command {
	var (
		source       string
		createLocal  bool
		createGlobal bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("config", changedArgs(cmd)); err != nil {
				return err
			}

			if createLocal {
				if err := a.mgr.WriteLocal(); err != nil {
					return err
				}
				a.log.Info("config written", "path", a.mgr.LocalPath)
			}
			if createGlobal {
				if err := a.mgr.WriteGlobal(); err != nil {
					return err
				}
				a.log.Info("config written", "path", a.mgr.GlobalPath)
			}
			if createLocal || createGlobal {
				return nil
			}

			out := cmd.OutOrStdout()
			switch source {
			case "global":
				return printConfigFile(out, a.mgr.GlobalPath)
			case "local":
				return printConfigFile(out, a.mgr.LocalPath)
			case "effective":
				return printEffective(out, a)
			default: // all
				fmt.Fprintf(out, "sources: %v\n", a.mgr.Sources())
				return printEffective(out, a)
			}
		},
	}

	f := cmd.Flags()
	f.StringVar(&source, "source", "all", "which layer to show: all, global, local or effective")
	f.BoolVar(&createLocal, "create-local-config", false, "write the effective settings to ./config.json")
	f.BoolVar(&createGlobal, "create-global-config", false, "write the effective settings to the global config file")
	return cmd
}

func printConfigFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "%s: not present\n", path)
			return nil
		}
		return err
	}
	_, err = w.Write(data)
	return err
}

func printEffective(w io.Writer, a *app) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a.mgr.Settings())
}
