// Package cli implements the cloudmap command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cloudmap",
		Short: "Generate cloud architecture diagrams and CDK code from a description",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (default ./cloudmap.toml if present)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// addBackendFlags registers the flags that select the store and model.
func addBackendFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("store", "memory", "record store (memory|dynamodb|sqlite)")
	f.String("db", "", "sqlite database path")
	f.String("table", "", "dynamodb table name")
	f.String("provider", "fixture", "model provider (bedrock|fixture)")
	f.String("model", "", "bedrock model id")
	f.String("fixtures", "", "fixture responses file for the fixture provider")
	f.String("log-level", "info", "log level (debug|info|warn|error)")
	f.String("env", "development", "environment (development|production|test)")
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
