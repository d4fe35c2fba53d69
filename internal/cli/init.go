package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/setup"
)

// NewInitCmd creates the init command.
func NewInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write the effective configuration (defaults, environment and flags) to the
config file so it can be edited. An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Writing config...") //nolint:errcheck // progress output
			_, err = setup.NewManager(opts.configPath, cmd.OutOrStdout()).Install(cfg, force)
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}
