package repotree

import "strings"

// Normalize strips leading and trailing slashes from a caller-supplied path.
func Normalize(p string) string {
	return strings.Trim(p, "/")
}

// BasePath returns p with its final slash-delimited segment removed,
// or "" when p has no slash.
func BasePath(p string) string {
	p = Normalize(p)
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// JoinPath joins a directory path and a child name.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Under reports whether path belongs below root under the given mode.
// root itself is never under root.
func Under(path, root string, mode PrefixMode) bool {
	if mode == Literal {
		return len(path) > len(root) && strings.HasPrefix(path, root)
	}
	if root == "" {
		return path != ""
	}
	return strings.HasPrefix(path, root+"/") && len(path) > len(root)+1
}
