package forge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ryantking/repotools/internal/git"
	"github.com/ryantking/repotools/internal/repotree"
)

// LocalSource serves listings from local git mirrors laid out as
// <root>/<owner>/<repo> (or <root>/<owner>/<repo>.git).
type LocalSource struct {
	root   string
	logger *slog.Logger
}

// NewLocalSource creates a LocalSource rooted at root.
func NewLocalSource(root string, logger *slog.Logger) (*LocalSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("local root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local root %s is not a directory", root)
	}
	return &LocalSource{root: root, logger: logger}, nil
}

// MirrorPath returns where the mirror of owner/repo lives under root.
func MirrorPath(root, owner, repo string) string {
	return filepath.Join(root, owner, repo)
}

func (s *LocalSource) open(op, owner, repo string) (*git.Repo, error) {
	if !validName(owner) || !validName(repo) {
		return nil, &Error{Op: op, Owner: owner, Repo: repo, Err: fmt.Errorf("%w: invalid owner or repository name", ErrNotFound)}
	}

	dir := MirrorPath(s.root, owner, repo)
	r, err := git.Open(dir)
	if errors.Is(err, git.ErrNotInGitRepo) {
		r, err = git.Open(dir + ".git")
	}
	if err != nil {
		return nil, localError(op, owner, repo, "", err)
	}
	return r, nil
}

// validName rejects names that would escape the mirror root.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

// DefaultBranch returns the branch the mirror's HEAD points at.
func (s *LocalSource) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	s.logger.DebugContext(ctx, "local request", "op", "repository", "owner", owner, "repo", repo)
	r, err := s.open("get repository", owner, repo)
	if err != nil {
		return "", err
	}
	branch, err := r.DefaultBranch()
	if err != nil {
		return "", localError("get repository", owner, repo, "", err)
	}
	return branch, nil
}

// Tree returns the recursive tree listing of ref.
func (s *LocalSource) Tree(ctx context.Context, owner, repo, ref string) ([]repotree.Entry, error) {
	s.logger.DebugContext(ctx, "local request", "op", "tree", "owner", owner, "repo", repo, "ref", ref)
	r, err := s.open("get tree", owner, repo)
	if err != nil {
		return nil, err
	}
	tree, err := r.Tree(ref)
	if err != nil {
		return nil, localError("get tree", owner, repo, ref, err)
	}

	var entries []repotree.Entry
	err = r.Walk(tree, func(e git.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := repotree.Entry{Path: e.Path, Kind: repotree.KindFromContentType(e.Type)}
		if entry.Kind == repotree.File && e.Type != "submodule" {
			entry.Size = repotree.Int64(e.Size)
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, localError("get tree", owner, repo, ref, err)
	}
	return entries, nil
}

// Contents returns the immediate children of path on the default branch.
func (s *LocalSource) Contents(ctx context.Context, owner, repo, path string) ([]repotree.Item, error) {
	s.logger.DebugContext(ctx, "local request", "op", "contents", "owner", owner, "repo", repo, "path", path)
	r, tree, err := s.defaultTree("get contents", owner, repo)
	if err != nil {
		return nil, err
	}
	children, err := r.List(tree, path)
	if err != nil {
		return nil, localError("get contents", owner, repo, path, err)
	}

	items := make([]repotree.Item, 0, len(children))
	for _, c := range children {
		item := repotree.Item{Name: c.Name, Type: c.Type}
		if !c.IsDir() {
			item.Size = repotree.Int64(c.Size)
		}
		items = append(items, item)
	}
	return items, nil
}

// RawFile returns the content of the file at path on the default branch.
func (s *LocalSource) RawFile(ctx context.Context, owner, repo, path string) (string, error) {
	s.logger.DebugContext(ctx, "local request", "op", "raw", "owner", owner, "repo", repo, "path", path)
	r, tree, err := s.defaultTree("get file", owner, repo)
	if err != nil {
		return "", err
	}
	content, err := r.ReadFile(tree, path)
	if err != nil {
		return "", localError("get file", owner, repo, path, err)
	}
	return content, nil
}

func (s *LocalSource) defaultTree(op, owner, repo string) (*git.Repo, *object.Tree, error) {
	r, err := s.open(op, owner, repo)
	if err != nil {
		return nil, nil, err
	}
	branch, err := r.DefaultBranch()
	if err != nil {
		return nil, nil, localError(op, owner, repo, "", err)
	}
	tree, err := r.Tree(branch)
	if err != nil {
		return nil, nil, localError(op, owner, repo, branch, err)
	}
	return r, tree, nil
}

// localError maps git package errors onto the forge taxonomy.
func localError(op, owner, repo, path string, err error) error {
	switch {
	case errors.Is(err, git.ErrNotInGitRepo), errors.Is(err, git.ErrPathNotFound), errors.Is(err, git.ErrRefNotFound):
		err = fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, git.ErrNotDirectory):
		err = fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	return &Error{Op: op, Owner: owner, Repo: repo, Path: path, Err: err}
}
