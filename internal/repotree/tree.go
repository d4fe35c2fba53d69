package repotree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingParent is returned when a listing entry's parent directory has no
// entry of its own, so the entry cannot be placed in the tree.
var ErrMissingParent = errors.New("parent directory missing from listing")

// BuildTree reconstructs the subtree under root from a flat recursive listing
// and returns root's immediate children, each with its subtree populated.
//
// Entries are placed in listing order. Every ancestor of a captured entry must
// itself appear earlier in the listing; otherwise BuildTree fails with
// ErrMissingParent rather than dropping the entry.
func BuildTree(entries []Entry, root string, mode PrefixMode) ([]*Node, error) {
	root = Normalize(root)

	placeholder := &Node{Path: root, Kind: Directory}
	index := map[string]*Node{root: placeholder}

	for _, e := range entries {
		if !Under(e.Path, root, mode) {
			continue
		}

		node := &Node{Path: e.Path, Kind: e.Kind, Size: e.Size}
		base := BasePath(e.Path)

		parent, ok := index[base]
		if !ok {
			return nil, fmt.Errorf("%w: %s (parent %q)", ErrMissingParent, e.Path, base)
		}
		index[e.Path] = node
		parent.Children = append(parent.Children, node)
	}

	return placeholder.Children, nil
}

// ListChildren shapes a one-level directory listing of dir into childless nodes.
func ListChildren(dir string, items []Item) []*Node {
	dir = Normalize(dir)
	nodes := make([]*Node, 0, len(items))
	for _, it := range items {
		nodes = append(nodes, &Node{
			Path: JoinPath(dir, it.Name),
			Kind: KindFromContentType(it.Type),
			Size: it.Size,
		})
	}
	return nodes
}

// Search returns every entry whose path contains name, in listing order.
// Matching is case-sensitive and unanchored; an empty name matches everything.
func Search(entries []Entry, name string) []SearchResult {
	results := make([]SearchResult, 0)
	for _, e := range entries {
		if strings.Contains(e.Path, name) {
			results = append(results, SearchResult{Path: e.Path, Kind: e.Kind})
		}
	}
	return results
}

// Walk visits nodes depth-first in pre-order. depth is 0 for the given nodes.
// Returning false from fn skips that node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) bool {
		total++
		return true
	})
	return total
}
