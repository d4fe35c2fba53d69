// Package git reads repository trees and blobs from local git repositories
// using go-git, and maintains bare mirrors of remote repositories.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Repo is an opened git repository.
type Repo struct {
	repo *gogit.Repository
}

// Entry is one tree entry produced by Walk or List.
type Entry struct {
	Path string
	Name string
	Type string // "dir", "file", "symlink" or "submodule"
	Size int64  // blob size; 0 for directories and submodules
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Type == "dir"
}

// Open opens the repository at path (bare or with a worktree).
func Open(path string) (*Repo, error) {
	r, err := gogit.PlainOpen(path)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotInGitRepo, path)
		}
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return &Repo{repo: r}, nil
}

// FromRepository wraps an already opened go-git repository.
func FromRepository(r *gogit.Repository) *Repo {
	return &Repo{repo: r}
}

// DefaultBranch returns the branch HEAD points at.
func (r *Repo) DefaultBranch() (string, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("%w: HEAD: %v", ErrRefNotFound, err)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", fmt.Errorf("%w: HEAD is detached", ErrRefNotFound)
}

// Tree returns the root tree of the commit that ref resolves to.
func (r *Repo) Tree(ref string) (*object.Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRefNotFound, ref, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}
	return tree, nil
}

// Walk calls fn for every entry below tree, depth-first, each directory
// before its contents.
func (r *Repo) Walk(tree *object.Tree, fn func(Entry) error) error {
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	for {
		name, te, err := walker.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to walk tree: %w", err)
		}
		if err := fn(r.entry(name, te)); err != nil {
			return err
		}
	}
}

// List returns the immediate children of dir ("" is the root).
func (r *Repo) List(tree *object.Tree, dir string) ([]Entry, error) {
	sub := tree
	if dir != "" {
		te, err := tree.FindEntry(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, dir)
		}
		if te.Mode != filemode.Dir {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		sub, err = tree.Tree(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read tree %s: %w", dir, err)
		}
	}

	entries := make([]Entry, 0, len(sub.Entries))
	for _, te := range sub.Entries {
		p := te.Name
		if dir != "" {
			p = dir + "/" + te.Name
		}
		entries = append(entries, r.entry(p, te))
	}
	return entries, nil
}

// ReadFile returns the content of the blob at path.
func (r *Repo) ReadFile(tree *object.Tree, path string) (string, error) {
	f, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) || errors.Is(err, object.ErrEntryNotFound) {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	content, err := f.Contents()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

func (r *Repo) entry(path string, te object.TreeEntry) Entry {
	e := Entry{Path: path, Name: te.Name}
	switch te.Mode {
	case filemode.Dir:
		e.Type = "dir"
		return e
	case filemode.Submodule:
		e.Type = "submodule"
		return e
	case filemode.Symlink:
		e.Type = "symlink"
	default:
		e.Type = "file"
	}
	if blob, err := r.repo.BlobObject(te.Hash); err == nil {
		e.Size = blob.Size
	}
	return e
}

// Mirror clones url into dir as a bare mirror, or fetches into an existing
// mirror. token, when set, is sent as HTTP basic auth.
func Mirror(ctx context.Context, url, dir, token string) error {
	var auth *githttp.BasicAuth
	if token != "" {
		auth = &githttp.BasicAuth{Username: "x-access-token", Password: token}
	}

	r, err := gogit.PlainOpen(dir)
	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		opts := &gogit.CloneOptions{URL: url, Mirror: true}
		if auth != nil {
			opts.Auth = auth
		}
		if _, err := gogit.PlainCloneContext(ctx, dir, true, opts); err != nil {
			return fmt.Errorf("failed to clone %s: %w", url, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to open mirror %s: %w", dir, err)
	}

	opts := &gogit.FetchOptions{Force: true}
	if auth != nil {
		opts.Auth = auth
	}
	if err := r.FetchContext(ctx, opts); err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return nil
}
