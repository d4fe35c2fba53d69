package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/config"
	"github.com/ryantking/repotools/internal/forge"
	"github.com/ryantking/repotools/internal/output"
)

// probeTimeout bounds the connectivity check made by status.
const probeTimeout = 10 * time.Second

// StatusInfo represents the effective configuration and forge reachability.
type StatusInfo struct {
	Backend       string `json:"backend"`
	Host          string `json:"host,omitempty"`
	BaseURL       string `json:"base_url,omitempty"`
	LocalRoot     string `json:"local_root,omitempty"`
	PrefixMode    string `json:"prefix_mode"`
	Authenticated bool   `json:"authenticated"`
	TokenSource   string `json:"token_source,omitempty"`
	Repository    string `json:"repository,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	ProbeError    string `json:"probe_error,omitempty"`
}

// NewStatusCmd creates the status command.
func NewStatusCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status [OWNER/REPO]",
		Short: "Show the effective configuration and check access to a repository",
		Long: `Show the effective configuration: backend, host, prefix mode and where the
forge token comes from. With OWNER/REPO, also fetch the repository's default branch to
check that the forge is reachable with these settings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var repoArg string
			if len(args) == 1 {
				repo, err := opts.parseRepo(args[0])
				if err != nil {
					return err
				}
				repoArg = repo.Owner + "/" + repo.Name
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			info := getStatusInfo(cfg)
			if repoArg != "" {
				probe(cmd.Context(), cfg, opts.logger(cfg, cmd.ErrOrStderr()), repoArg, &info)
			}

			if jsonOutput {
				return output.WriteJSON(cmd.OutOrStdout(), info)
			}
			return printStatus(cmd.OutOrStdout(), info)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func getStatusInfo(cfg *config.Config) StatusInfo {
	info := StatusInfo{
		Backend:    cfg.Backend,
		PrefixMode: cfg.PrefixMode,
	}

	switch cfg.Backend {
	case config.BackendGH:
		info.Host = cfg.Host
	case config.BackendGitHub:
		info.BaseURL = cfg.BaseURL
	case config.BackendLocal:
		info.LocalRoot = cfg.LocalRoot
		return info
	}

	info.TokenSource = tokenSource(cfg)
	info.Authenticated = info.TokenSource != ""
	return info
}

// tokenSource names where the forge token comes from, or "" when there is none.
func tokenSource(cfg *config.Config) string {
	if cfg.Token != "" {
		for _, key := range []string{"GH_TOKEN", "GITHUB_TOKEN"} {
			if os.Getenv(key) == cfg.Token {
				return key
			}
		}
		return "config"
	}
	if cfg.Backend == config.BackendGH {
		if token, source := auth.TokenForHost(cfg.Host); token != "" {
			return source
		}
	}
	return ""
}

// probe records the default branch of repo, or why it could not be fetched.
func probe(ctx context.Context, cfg *config.Config, logger *slog.Logger, repo string, info *StatusInfo) {
	info.Repository = repo

	source, err := forge.New(cfg, logger)
	if err == nil {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		owner, name, _ := strings.Cut(repo, "/")
		info.DefaultBranch, err = source.DefaultBranch(ctx, owner, name)
	}
	if err != nil {
		logger.DebugContext(ctx, "status probe failed", "repository", repo, "error", err)
		info.ProbeError = forge.Describe(err)
	}
}

func printStatus(w io.Writer, info StatusInfo) error {
	p := func(format string, args ...any) {
		fmt.Fprintf(w, format, args...) //nolint:errcheck // terminal output
	}

	p("\n  repotools Status\n")
	p("  ----------------------------------------\n")
	p("  Backend:       %s\n", info.Backend)
	switch {
	case info.Host != "":
		p("  Host:          %s\n", info.Host)
	case info.BaseURL != "":
		p("  API:           %s\n", info.BaseURL)
	case info.LocalRoot != "":
		p("  Mirrors:       %s\n", info.LocalRoot)
	}
	p("  Prefix mode:   %s\n", info.PrefixMode)

	if info.Backend != config.BackendLocal {
		if info.Authenticated {
			p("  Token:         %s\n", info.TokenSource)
		} else {
			p("  Token:         none (public repositories only)\n")
		}
	}

	if info.Repository != "" {
		if info.ProbeError == "" {
			p("  Repository:    %s (default branch %s)\n", info.Repository, info.DefaultBranch)
		} else {
			p("  Repository:    %s unreachable\n", info.Repository)
			p("    %s\n", info.ProbeError)
		}
	}
	p("\n")
	return nil
}
