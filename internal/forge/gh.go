package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"

	"github.com/ryantking/repotools/internal/repotree"
)

// GHOptions configures a GHSource.
type GHOptions struct {
	// Host is the forge host, e.g. "github.com" or a GitHub Enterprise host.
	Host string
	// Token is passed through to the client. When empty, go-gh resolves one
	// from GH_TOKEN/GITHUB_TOKEN or the gh CLI configuration.
	Token   string
	Timeout time.Duration
	// Transport overrides the HTTP transport; used by tests.
	Transport http.RoundTripper
}

// GHSource lists repositories through the GitHub REST API using go-gh.
type GHSource struct {
	rest   *api.RESTClient
	raw    *api.RESTClient
	logger *slog.Logger
}

// NewGHSource creates a GHSource. Two REST clients are built: one for JSON
// endpoints and one that asks the contents API for raw file bodies.
func NewGHSource(opts GHOptions, logger *slog.Logger) (*GHSource, error) {
	base := api.ClientOptions{
		Host:      opts.Host,
		AuthToken: opts.Token,
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
	}

	rest, err := api.NewRESTClient(base)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client for %s: %w\n\nSet GH_TOKEN, run 'gh auth login', or use backend github for anonymous access", opts.Host, err)
	}

	rawOpts := base
	rawOpts.Headers = map[string]string{"Accept": rawMediaType}
	raw, err := api.NewRESTClient(rawOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create raw REST client for %s: %w", opts.Host, err)
	}

	return &GHSource{rest: rest, raw: raw, logger: logger}, nil
}

type ghRepository struct {
	DefaultBranch string `json:"default_branch"`
}

type ghTree struct {
	SHA       string        `json:"sha"`
	Truncated bool          `json:"truncated"`
	Entries   []ghTreeEntry `json:"tree"`
}

type ghTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size *int64 `json:"size"`
}

type ghContent struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size *int64 `json:"size"`
}

// DefaultBranch returns the repository's default branch.
func (s *GHSource) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var r ghRepository
	path := fmt.Sprintf("repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	s.logger.DebugContext(ctx, "forge request", "op", "repository", "path", path)
	if err := s.rest.DoWithContext(ctx, http.MethodGet, path, nil, &r); err != nil {
		return "", ghError("get repository", owner, repo, "", err)
	}
	if r.DefaultBranch == "" {
		return "", &Error{Op: "get repository", Owner: owner, Repo: repo, Err: errors.New("response has no default branch")}
	}
	return r.DefaultBranch, nil
}

// Tree returns the recursive tree listing of ref.
func (s *GHSource) Tree(ctx context.Context, owner, repo, ref string) ([]repotree.Entry, error) {
	var t ghTree
	path := fmt.Sprintf("repos/%s/%s/git/trees/%s?recursive=1", url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(ref))
	s.logger.DebugContext(ctx, "forge request", "op", "tree", "path", path)
	if err := s.rest.DoWithContext(ctx, http.MethodGet, path, nil, &t); err != nil {
		return nil, ghError("get tree", owner, repo, ref, err)
	}
	if t.Truncated {
		s.logger.WarnContext(ctx, "recursive tree listing truncated by forge", "owner", owner, "repo", repo, "ref", ref, "entries", len(t.Entries))
	}

	entries := make([]repotree.Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		kind := repotree.KindFromTreeType(e.Type)
		size := e.Size
		if kind == repotree.Directory {
			size = nil
		}
		entries = append(entries, repotree.Entry{Path: e.Path, Kind: kind, Size: size})
	}
	return entries, nil
}

// Contents returns the immediate children of path.
func (s *GHSource) Contents(ctx context.Context, owner, repo, path string) ([]repotree.Item, error) {
	var raw json.RawMessage
	endpoint := contentsPath(owner, repo, path)
	s.logger.DebugContext(ctx, "forge request", "op", "contents", "path", endpoint)
	if err := s.rest.DoWithContext(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, ghError("get contents", owner, repo, path, err)
	}
	return decodeDirectory(owner, repo, path, raw)
}

// RawFile returns the raw content of the file at path.
func (s *GHSource) RawFile(ctx context.Context, owner, repo, path string) (string, error) {
	endpoint := contentsPath(owner, repo, path)
	s.logger.DebugContext(ctx, "forge request", "op", "raw", "path", endpoint)
	resp, err := s.raw.RequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", ghError("get file", owner, repo, path, err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // non-actionable after reading

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Op: "get file", Owner: owner, Repo: repo, Path: path, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	return string(body), nil
}

// contentsPath builds the contents endpoint for path, escaping each segment.
func contentsPath(owner, repo, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), strings.Join(segments, "/"))
}

// decodeDirectory decodes a contents API response that must be a directory listing.
// A file path yields a JSON object instead of an array.
func decodeDirectory(owner, repo, path string, raw json.RawMessage) ([]repotree.Item, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, &Error{Op: "get contents", Owner: owner, Repo: repo, Path: path, Err: ErrNotDirectory}
	}

	var contents []ghContent
	if err := json.Unmarshal(raw, &contents); err != nil {
		return nil, &Error{Op: "get contents", Owner: owner, Repo: repo, Path: path, Err: fmt.Errorf("decode listing: %w", err)}
	}

	items := make([]repotree.Item, 0, len(contents))
	for _, c := range contents {
		items = append(items, repotree.Item{Name: c.Name, Type: c.Type, Size: c.Size})
	}
	return items, nil
}

// ghError wraps a go-gh error with the forge error taxonomy.
func ghError(op, owner, repo, path string, err error) error {
	status := 0
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode
	}
	if status == 0 && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return &Error{Op: op, Owner: owner, Repo: repo, Path: path, Err: err}
	}
	return &Error{Op: op, Owner: owner, Repo: repo, Path: path, StatusCode: status, Err: classify(status, err)}
}
