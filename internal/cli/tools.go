package cli

import (
	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/output"
)

// NewToolsCmd creates the tools command.
func NewToolsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their input schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, _, err := opts.registry(cmd)
			if err != nil {
				return err
			}
			return output.WriteJSON(cmd.OutOrStdout(), registry.Tools())
		},
	}
	return cmd
}
