// Package cli wires the docindexer commands: argument schema
// validation, layered configuration, and the document processing
// operations themselves.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/config"
	"github.com/dgallion1/docindexer/internal/schema"
)

// app carries the shared collaborators every command needs.
type app struct {
	mgr       *config.Manager
	validator *schema.Validator
	log       *slog.Logger
	debug     bool
	dryRun    bool
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute loads configuration and runs the CLI.
func Execute() error {
	a := &app{log: newLogger(false)}

	a.mgr = config.NewManager(a.log)
	if err := a.mgr.Load(); err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	a.validator = validator

	return NewRootCmd(a).Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docindexer",
		Short: "Organize documents into structure trees and plan text chunks",
		Long: `docindexer parses markdown (and other document formats) into a
hierarchical structure tree, then plans and generates text chunks
sized for embedding pipelines.

Configuration layers, lowest priority first: global config
(~/.docindexer/config.json), local config (./config.json),
DOCINDEXER_* environment variables, command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.debug {
				a.log = newLogger(true)
				a.mgr.Settings().Debug = true
			}
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "discover and report without writing any files")

	root.AddCommand(
		NewStructureCmd(a),
		NewChunksCmd(a),
		NewIndexCmd(a),
		NewListCmd(a),
		NewConfigCmd(a),
		NewSchemaCmd(a),
		NewServeCmd(a),
	)
	return root
}
