// Package repotree reconstructs repository directory trees from flat forge listings
// and implements the path matching used for tree placement and name search.
package repotree

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a repository entry.
type Kind int

const (
	// File is any non-directory entry (blobs, symlinks, submodules).
	File Kind = iota
	// Directory is a tree entry.
	Directory
)

// String returns the wire name of the kind ("file" or "dir").
func (k Kind) String() string {
	if k == Directory {
		return "dir"
	}
	return "file"
}

// MarshalJSON encodes the kind as its wire name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes "dir" or "file".
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "dir":
		*k = Directory
	case "file":
		*k = File
	default:
		return fmt.Errorf("unknown entry kind %q", s)
	}
	return nil
}

// KindFromTreeType maps a git tree entry type to a Kind.
// Only "tree" is a directory; blobs and commits (submodules) are files.
func KindFromTreeType(typ string) Kind {
	if typ == "tree" {
		return Directory
	}
	return File
}

// KindFromContentType maps a contents-API item type to a Kind.
// Only "dir" is a directory; files, symlinks and submodules are files.
func KindFromContentType(typ string) Kind {
	if typ == "dir" {
		return Directory
	}
	return File
}

// Entry is one record of a flat recursive listing.
type Entry struct {
	Path string
	Kind Kind
	Size *int64 // nil for directories
}

// Item is one record of a single-directory listing.
type Item struct {
	Name string
	Type string // forge item type, e.g. "file", "dir", "symlink", "submodule"
	Size *int64
}

// Node is a reconstructed tree node. A node exclusively owns its children.
type Node struct {
	Path     string  `json:"path"`
	Kind     Kind    `json:"type"`
	Size     *int64  `json:"size,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// SearchResult is a path search hit.
type SearchResult struct {
	Path string `json:"path"`
	Kind Kind   `json:"type"`
}

// PrefixMode selects how a target root path captures listing entries.
type PrefixMode int

const (
	// Segment captures only entries strictly below root on a "/" boundary.
	Segment PrefixMode = iota
	// Literal captures any entry whose path starts with root as a plain string
	// and is longer than it, so root "lib" also captures "libs/x".
	Literal
)

// String returns the config name of the mode.
func (m PrefixMode) String() string {
	if m == Literal {
		return "literal"
	}
	return "segment"
}

// ParsePrefixMode parses "segment" or "literal". An empty string is Segment.
func ParsePrefixMode(s string) (PrefixMode, error) {
	switch s {
	case "", "segment":
		return Segment, nil
	case "literal":
		return Literal, nil
	default:
		return Segment, fmt.Errorf("unknown prefix mode %q (want segment or literal)", s)
	}
}

// Int64 returns a pointer to n.
func Int64(n int64) *int64 {
	return &n
}
