package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ryantking/repotools/internal/forge"
	"github.com/ryantking/repotools/internal/repotree"
)

// fakeSource is an in-memory forge.Source for octo/hello on branch main.
type fakeSource struct {
	entries  []repotree.Entry
	contents map[string][]repotree.Item
	files    map[string]string
	delays   map[string]time.Duration

	mu    sync.Mutex
	calls []string
}

var _ forge.Source = (*fakeSource)(nil)

func newFakeSource() *fakeSource {
	return &fakeSource{
		entries: []repotree.Entry{
			{Path: "README.md", Kind: repotree.File, Size: repotree.Int64(6)},
			{Path: "src", Kind: repotree.Directory},
			{Path: "src/a.py", Kind: repotree.File, Size: repotree.Int64(120)},
			{Path: "src/b.py", Kind: repotree.File, Size: repotree.Int64(80)},
		},
		contents: map[string][]repotree.Item{
			"": {
				{Name: "README.md", Type: "file", Size: repotree.Int64(6)},
				{Name: "src", Type: "dir", Size: repotree.Int64(0)},
			},
			"src": {
				{Name: "a.py", Type: "file", Size: repotree.Int64(120)},
				{Name: "b.py", Type: "file", Size: repotree.Int64(80)},
			},
		},
		files: map[string]string{
			"README.md": "readme",
			"a.txt":     "A",
			"src/a.py":  "print('a')",
			"src/b.py":  "print('b')",
		},
		delays: map[string]time.Duration{},
	}
}

func (s *fakeSource) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeSource) check(owner, repo, op, target string) error {
	if owner == "octo" && repo == "hello" {
		return nil
	}
	return &forge.Error{Op: op, Owner: owner, Repo: repo, Path: target, StatusCode: 404, Err: forge.ErrNotFound}
}

func (s *fakeSource) DefaultBranch(_ context.Context, owner, repo string) (string, error) {
	s.record("branch")
	if err := s.check(owner, repo, "get repository", ""); err != nil {
		return "", err
	}
	return "main", nil
}

func (s *fakeSource) Tree(_ context.Context, owner, repo, ref string) ([]repotree.Entry, error) {
	s.record("tree " + ref)
	if err := s.check(owner, repo, "get tree", ref); err != nil {
		return nil, err
	}
	return s.entries, nil
}

func (s *fakeSource) Contents(_ context.Context, owner, repo, path string) ([]repotree.Item, error) {
	s.record("contents " + path)
	if err := s.check(owner, repo, "get contents", path); err != nil {
		return nil, err
	}
	items, ok := s.contents[path]
	if !ok {
		return nil, &forge.Error{Op: "get contents", Owner: owner, Repo: repo, Path: path, StatusCode: 404, Err: forge.ErrNotFound}
	}
	return items, nil
}

func (s *fakeSource) RawFile(ctx context.Context, owner, repo, path string) (string, error) {
	s.record("raw " + path)
	if err := s.check(owner, repo, "get file", path); err != nil {
		return "", err
	}
	if d := s.delays[path]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	content, ok := s.files[path]
	if !ok {
		return "", &forge.Error{Op: "get file", Owner: owner, Repo: repo, Path: path, StatusCode: 404, Err: fmt.Errorf("%w: missing", forge.ErrNotFound)}
	}
	return content, nil
}
