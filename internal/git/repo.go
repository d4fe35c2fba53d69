package git

import (
	"errors"
)

// ErrNotInGitRepo is returned when a git repository cannot be found.
var ErrNotInGitRepo = errors.New("not a git repository")

// ErrPathNotFound is returned when a path does not exist in a tree.
var ErrPathNotFound = errors.New("path not found in tree")

// ErrRefNotFound is returned when a branch or revision cannot be resolved.
var ErrRefNotFound = errors.New("reference not found")

// ErrNotDirectory is returned when a tree listing is requested for a non-directory.
var ErrNotDirectory = errors.New("path is not a directory")
