package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/notestore/internal/ir"
)

// VersionInfo is the payload of the version command.
type VersionInfo struct {
	Version      string `json:"version"`
	TraceVersion string `json:"trace_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of notestore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if f.Format == "json" {
				return f.Success(VersionInfo{Version: ir.StoreVersion, TraceVersion: ir.TraceVersion})
			}
			fmt.Fprintf(f.Writer, "notestore version %s (trace format %s)\n", ir.StoreVersion, ir.TraceVersion)
			return nil
		},
	}
}
