package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cloudmap-backend/domain/architecture"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <graph.json>",
		Short: "Check an exported architecture graph",
		Long: `Check an exported architecture document for dangling edges, duplicate
ids and disconnected parts. Exits with status 1 when errors are found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ExitCodeError{Code: ExitError, Message: "failed to read graph", Err: err}
	}

	var doc architecture.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ExitCodeError{Code: ExitError, Message: fmt.Sprintf("%s is not a graph document", path), Err: err}
	}

	report := architecture.Check(doc.Nodes, doc.Edges)

	w := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		if err := writeJSON(w, report); err != nil {
			return err
		}
	} else {
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "%-7s %s: %s\n", issue.Severity, issue.Kind, issue.Message)
		}
		fmt.Fprintf(w, "%d errors, %d warnings, %d components\n", report.Errors, report.Warnings, report.Components)
	}

	if !report.Valid {
		return &ExitCodeError{Code: ExitFailure, Message: fmt.Sprintf("graph has %d errors", report.Errors)}
	}
	return nil
}
