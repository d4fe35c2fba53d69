// Package forge provides repository listing sources: the collaborators that
// fetch repository metadata, flat tree listings, directory contents and raw
// file content from a code forge or a local mirror.
package forge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ryantking/repotools/internal/config"
	"github.com/ryantking/repotools/internal/repotree"
)

// rawMediaType asks the contents API for the file body instead of JSON.
const rawMediaType = "application/vnd.github.raw"

// Source is a repository listing source.
// Any non-success response is returned as an error; nothing is retried.
type Source interface {
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	// Tree returns the flat recursive listing of ref. Directories are listed explicitly.
	Tree(ctx context.Context, owner, repo, ref string) ([]repotree.Entry, error)
	// Contents returns the immediate children of the directory at path.
	Contents(ctx context.Context, owner, repo, path string) ([]repotree.Item, error)
	// RawFile returns the content of the file at path on the default branch.
	RawFile(ctx context.Context, owner, repo, path string) (string, error)
}

// New creates the Source selected by cfg.Backend.
func New(cfg *config.Config, logger *slog.Logger) (Source, error) {
	switch cfg.Backend {
	case config.BackendGH, "":
		return NewGHSource(GHOptions{
			Host:    cfg.Host,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
		}, logger)
	case config.BackendGitHub:
		return NewGitHubSource(GitHubOptions{
			BaseURL: cfg.BaseURL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
		}, logger)
	case config.BackendLocal:
		return NewLocalSource(cfg.LocalRoot, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
