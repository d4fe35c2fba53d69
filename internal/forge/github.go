package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/ryantking/repotools/internal/repotree"
)

const defaultAPIURL = "https://api.github.com"

// GitHubOptions configures a GitHubSource.
type GitHubOptions struct {
	// BaseURL overrides the REST API URL, e.g. a GitHub Enterprise or mock server.
	BaseURL string
	// Token is passed through as a static bearer token. Empty means anonymous.
	Token   string
	Timeout time.Duration
}

// GitHubSource lists repositories through the GitHub REST API using go-github.
// Unlike GHSource it works without any credentials.
type GitHubSource struct {
	gh     *gogithub.Client
	logger *slog.Logger
}

// NewGitHubSource creates a GitHubSource.
func NewGitHubSource(opts GitHubOptions, logger *slog.Logger) (*GitHubSource, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = opts.Timeout
	}

	c := gogithub.NewClient(httpClient)
	if err := applyBaseURL(c, opts.BaseURL); err != nil {
		return nil, err
	}
	return &GitHubSource{gh: c, logger: logger}, nil
}

// NewGitHubSourceFromClient wraps an existing go-github client.
func NewGitHubSourceFromClient(gh *gogithub.Client, logger *slog.Logger) *GitHubSource {
	return &GitHubSource{gh: gh, logger: logger}
}

func applyBaseURL(c *gogithub.Client, baseURL string) error {
	if baseURL == "" || baseURL == defaultAPIURL {
		return nil
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	c.BaseURL = u
	return nil
}

// DefaultBranch returns the repository's default branch.
func (s *GitHubSource) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	s.logger.DebugContext(ctx, "forge request", "op", "repository", "owner", owner, "repo", repo)
	r, resp, err := s.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", githubError("get repository", owner, repo, "", resp, err)
	}
	branch := r.GetDefaultBranch()
	if branch == "" {
		return "", &Error{Op: "get repository", Owner: owner, Repo: repo, Err: errors.New("response has no default branch")}
	}
	return branch, nil
}

// Tree returns the recursive tree listing of ref.
func (s *GitHubSource) Tree(ctx context.Context, owner, repo, ref string) ([]repotree.Entry, error) {
	s.logger.DebugContext(ctx, "forge request", "op", "tree", "owner", owner, "repo", repo, "ref", ref)
	tree, resp, err := s.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, githubError("get tree", owner, repo, ref, resp, err)
	}
	if tree.GetTruncated() {
		s.logger.WarnContext(ctx, "recursive tree listing truncated by forge", "owner", owner, "repo", repo, "ref", ref, "entries", len(tree.Entries))
	}

	entries := make([]repotree.Entry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entry := repotree.Entry{Path: e.GetPath(), Kind: repotree.KindFromTreeType(e.GetType())}
		if entry.Kind == repotree.File && e.Size != nil {
			entry.Size = repotree.Int64(int64(*e.Size))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Contents returns the immediate children of path.
func (s *GitHubSource) Contents(ctx context.Context, owner, repo, path string) ([]repotree.Item, error) {
	s.logger.DebugContext(ctx, "forge request", "op", "contents", "owner", owner, "repo", repo, "path", path)
	file, dir, resp, err := s.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, githubError("get contents", owner, repo, path, resp, err)
	}
	if file != nil {
		return nil, &Error{Op: "get contents", Owner: owner, Repo: repo, Path: path, Err: ErrNotDirectory}
	}

	items := make([]repotree.Item, 0, len(dir))
	for _, c := range dir {
		item := repotree.Item{Name: c.GetName(), Type: c.GetType()}
		if c.Size != nil {
			item.Size = repotree.Int64(int64(*c.Size))
		}
		items = append(items, item)
	}
	return items, nil
}

// RawFile returns the raw content of the file at path.
func (s *GitHubSource) RawFile(ctx context.Context, owner, repo, path string) (string, error) {
	s.logger.DebugContext(ctx, "forge request", "op", "raw", "owner", owner, "repo", repo, "path", path)
	escaped := (&url.URL{Path: path}).String()
	req, err := s.gh.NewRequest(http.MethodGet, fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, escaped), nil)
	if err != nil {
		return "", &Error{Op: "get file", Owner: owner, Repo: repo, Path: path, Err: err}
	}
	req.Header.Set("Accept", rawMediaType)

	var buf bytes.Buffer
	resp, err := s.gh.Do(ctx, req, &buf)
	if err != nil {
		return "", githubError("get file", owner, repo, path, resp, err)
	}
	return buf.String(), nil
}

// githubError wraps a go-github error with the forge error taxonomy.
func githubError(op, owner, repo, path string, resp *gogithub.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return &Error{Op: op, Owner: owner, Repo: repo, Path: path, StatusCode: status, Err: fmt.Errorf("%w: %v", ErrRateLimited, err)}
	}
	if status == 0 && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return &Error{Op: op, Owner: owner, Repo: repo, Path: path, Err: err}
	}
	return &Error{Op: op, Owner: owner, Repo: repo, Path: path, StatusCode: status, Err: classify(status, err)}
}
