package forge

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

// fakeRepo is the repository served by newFakeForge: octo/hello on branch main.
var fakeTree = map[string]any{
	"sha":       "abc123",
	"truncated": false,
	"tree": []map[string]any{
		{"path": "README.md", "type": "blob", "size": 5},
		{"path": "src", "type": "tree"},
		{"path": "src/a.py", "type": "blob", "size": 120},
		{"path": "src/b.py", "type": "blob", "size": 80},
		{"path": "vendor/lib", "type": "commit"},
	},
}

var fakeFiles = map[string]string{
	"README.md": "hello",
	"src/a.py":  "print('a')",
	"src/b.py":  "print('b')",
}

// newFakeForge returns a handler imitating the GitHub REST endpoints used by
// the sources, mounted under prefix ("/api/v3" for enterprise-style hosts).
func newFakeForge(t *testing.T, prefix string) http.Handler {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test server
	}
	notFound := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+prefix+"/repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("owner") + "/" + r.PathValue("repo") {
		case "octo/hello":
			writeJSON(w, http.StatusOK, map[string]any{"name": "hello", "default_branch": "main"})
		case "octo/private":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		case "octo/limited":
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "API rate limit exceeded"})
		default:
			notFound(w)
		}
	})
	mux.HandleFunc("GET "+prefix+"/repos/octo/hello/git/trees/{ref}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("ref") != "main" {
			notFound(w)
			return
		}
		if r.URL.Query().Get("recursive") == "" {
			t.Errorf("tree requested without recursive flag: %s", r.URL)
		}
		writeJSON(w, http.StatusOK, fakeTree)
	})
	mux.HandleFunc("GET "+prefix+"/repos/octo/hello/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(r.PathValue("path"), "/")

		if content, ok := fakeFiles[path]; ok {
			if !strings.Contains(r.Header.Get("Accept"), "raw") {
				writeJSON(w, http.StatusOK, map[string]any{"type": "file", "name": path, "path": path, "size": len(content)})
				return
			}
			w.Header().Set("Content-Type", "application/vnd.github.raw")
			_, _ = w.Write([]byte(content)) //nolint:errcheck // test server
			return
		}

		switch path {
		case "":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"name": "README.md", "path": "README.md", "type": "file", "size": 5},
				{"name": "src", "path": "src", "type": "dir", "size": 0},
			})
		case "src":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"name": "a.py", "path": "src/a.py", "type": "file", "size": 120},
				{"name": "b.py", "path": "src/b.py", "type": "file", "size": 80},
			})
		default:
			notFound(w)
		}
	})
	return mux
}
