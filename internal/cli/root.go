// Package cli implements the repotools command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/agent"
	"github.com/ryantking/repotools/internal/config"
	"github.com/ryantking/repotools/internal/exitcode"
	"github.com/ryantking/repotools/internal/logging"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	backend    string
	host       string
	localRoot  string
	prefixMode string
	logLevel   string
}

// Execute runs the CLI application.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "repotools",
		Short: "Inspect remote repositories through agent-callable tools",
		Long: `Inspect remote repositories through agent-callable tools: list a directory tree,
search file and directory names, and read raw file contents. The same tools are available
from the command line, as raw JSON calls, and over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to the config file")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Repository source: gh, github or local")
	cmd.PersistentFlags().StringVar(&opts.host, "host", "", "Forge host for the gh backend")
	cmd.PersistentFlags().StringVar(&opts.localRoot, "local-root", "", "Directory holding local mirrors as OWNER/REPO")
	cmd.PersistentFlags().StringVar(&opts.prefixMode, "prefix-mode", "", "Recursive listing root matching: segment or literal")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		NewVersionCmd(),
		NewStatusCmd(opts),
		NewTreeCmd(opts),
		NewSearchCmd(opts),
		NewReadCmd(opts),
		NewCallCmd(opts),
		NewToolsCmd(opts),
		NewServeCmd(opts),
		NewMirrorCmd(opts),
		NewInitCmd(opts),
	)

	return cmd
}

// loadConfig reads the config file and environment, then applies flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, exitcode.New(exitcode.ExitConfig, err)
	}

	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.host != "" {
		cfg.Host = o.host
	}
	if o.localRoot != "" {
		cfg.LocalRoot = o.localRoot
	}
	if o.prefixMode != "" {
		cfg.PrefixMode = o.prefixMode
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, exitcode.New(exitcode.ExitConfig, fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg, nil
}

// logger builds the slog logger configured by cfg, writing to w.
func (o *rootOptions) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format, w)
}

// repoTools loads configuration and builds the tools for cmd.
func (o *rootOptions) repoTools(cmd *cobra.Command) (*agent.RepoTools, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return agent.NewRepoToolsFromConfig(cfg, o.logger(cfg, cmd.ErrOrStderr()))
}

// registry loads configuration and builds the tool registry for cmd.
func (o *rootOptions) registry(cmd *cobra.Command) (*agent.ToolRegistry, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	registry, err := agent.NewRepoToolRegistry(cfg, o.logger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return nil, nil, err
	}
	return registry, cfg, nil
}

// parseRepo parses OWNER/REPO, HOST/OWNER/REPO or a repository URL. A host
// named in the argument becomes the forge host unless --host was given.
func (o *rootOptions) parseRepo(arg string) (repository.Repository, error) {
	if strings.Count(arg, "/") == 1 {
		owner, name, _ := strings.Cut(arg, "/")
		if owner == "" || name == "" {
			return repository.Repository{}, exitcode.New(exitcode.ExitUsage, fmt.Errorf("expected OWNER/REPO, got %q", arg))
		}
		return repository.Repository{Owner: owner, Name: name}, nil
	}

	repo, err := repository.Parse(arg)
	if err != nil {
		return repository.Repository{}, exitcode.New(exitcode.ExitUsage, fmt.Errorf("expected OWNER/REPO, got %q: %w", arg, err))
	}
	if o.host == "" {
		o.host = repo.Host
	}
	return repo, nil
}
