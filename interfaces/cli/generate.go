package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cloudmap-backend/application/commands"
	"cloudmap-backend/domain/architecture"
	"cloudmap-backend/infrastructure/di"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	Code bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate an architecture from a description",
		Long: `Generate an architecture graph from a plain-language description and
print the stored record. With --code the CDK code is generated as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Code, "code", false, "also generate CDK code")
	addBackendFlags(cmd)

	return cmd
}

func runGenerate(cmd *cobra.Command, rootOpts *RootOptions, opts *GenerateOptions, text string) error {
	cfg, err := loadConfig(cmd, rootOpts)
	if err != nil {
		return err
	}
	// Logs share stdout with the result, so keep them quiet unless asked.
	if !cmd.Flags().Changed("log-level") {
		cfg.Log.Level = "error"
	}

	ctx := cmd.Context()
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return &ExitCodeError{Code: ExitError, Message: "failed to initialize", Err: err}
	}
	defer cleanup()

	result, err := container.CommandBus.Send(ctx, commands.NewCreateArchitectureCommand(text))
	if err != nil {
		return &ExitCodeError{Code: ExitFailure, Message: "generation failed", Err: err}
	}
	record := result.(*architecture.Record)

	if opts.Code {
		result, err = container.CommandBus.Send(ctx, commands.GenerateCodeCommand{ArchitectureID: record.ID})
		if err != nil {
			return &ExitCodeError{Code: ExitFailure, Message: "code generation failed", Err: err}
		}
		record = result.(*architecture.Record)
	}

	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), record)
	}
	printRecord(cmd.OutOrStdout(), record)
	return nil
}

func printRecord(w io.Writer, record *architecture.Record) {
	fmt.Fprintf(w, "Architecture %s (version %d)\n", record.ID, record.Version)
	fmt.Fprintf(w, "%d nodes, %d edges\n", len(record.Nodes), len(record.Edges))
	for _, n := range record.Nodes {
		label, _ := n.Data["label"].(string)
		fmt.Fprintf(w, "  node %s %s\n", n.ID, label)
	}
	for _, e := range record.Edges {
		fmt.Fprintf(w, "  edge %s: %s -> %s\n", e.ID, e.Source, e.Target)
	}
	if rationale := record.Metadata.Rationale(); rationale != "" {
		fmt.Fprintf(w, "\n%s\n", rationale)
	}
	if code, ok := record.Metadata.CDKCode(); ok {
		fmt.Fprintf(w, "\n%s\n", code)
	}
}
