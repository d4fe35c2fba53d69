package cli

import (
	"fmt"
	"os"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/config"
	"github.com/ryantking/repotools/internal/exitcode"
	"github.com/ryantking/repotools/internal/forge"
	"github.com/ryantking/repotools/internal/git"
	"github.com/ryantking/repotools/internal/output"
)

// NewMirrorCmd creates the mirror command.
func NewMirrorCmd(opts *rootOptions) *cobra.Command {
	var cloneURL string

	cmd := &cobra.Command{
		Use:   "mirror OWNER/REPO",
		Short: "Create or update a local mirror for the local backend",
		Long: `Clone OWNER/REPO as a bare mirror under the local root (--local-root or
local_root in the config), or fetch into the mirror if it already exists. The local
backend then serves the repository without contacting the forge.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := opts.parseRepo(args[0])
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.LocalRoot == "" {
				return exitcode.New(exitcode.ExitConfig, fmt.Errorf("no local root configured\n\nSet --local-root or local_root in %s", opts.configPath))
			}
			if err := os.MkdirAll(cfg.LocalRoot, 0o755); err != nil {
				return exitcode.New(exitcode.ExitCantCreat, fmt.Errorf("failed to create local root: %w", err))
			}

			url := cloneURL
			if url == "" {
				url = fmt.Sprintf("https://%s/%s/%s.git", cfg.Host, repo.Owner, repo.Name)
			}
			dir := forge.MirrorPath(cfg.LocalRoot, repo.Owner, repo.Name)

			logger := opts.logger(cfg, cmd.ErrOrStderr())
			logger.InfoContext(cmd.Context(), "mirroring repository", "url", url, "dir", dir)

			if err := git.Mirror(cmd.Context(), url, dir, mirrorToken(cfg)); err != nil {
				return exitcode.New(exitcode.ExitUnavailable, err)
			}

			return output.WriteJSON(cmd.OutOrStdout(), map[string]string{
				"status":     "mirrored",
				"repository": repo.Owner + "/" + repo.Name,
				"path":       dir,
			})
		},
	}

	cmd.Flags().StringVar(&cloneURL, "url", "", "Clone URL (default https://HOST/OWNER/REPO.git)")

	return cmd
}

// mirrorToken returns the token used to authenticate clone and fetch.
func mirrorToken(cfg *config.Config) string {
	if cfg.Token != "" {
		return cfg.Token
	}
	token, _ := auth.TokenForHost(cfg.Host)
	return token
}
