package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryantking/repotools/internal/exitcode"
	"github.com/ryantking/repotools/internal/forge"
)

// newMirrorRoot lays out root/octo/hello as a git repository on main.
func newMirrorRoot(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	dir := forge.MirrorPath(root, "octo", "hello")

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, r.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(0, 0)},
	})
	require.NoError(t, err)

	return root
}

var testFiles = map[string]string{
	"README.md":   "hello\n",
	"src/a.py":    "print('a')\n",
	"src/b.py":    "print('b')\n",
	"lib/x.go":    "package lib\n",
	"libs/y.go":   "package libs\n",
	"docs/readme": "docs",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REPOTOOLS_BACKEND", "REPOTOOLS_HOST", "REPOTOOLS_BASE_URL", "REPOTOOLS_LOCAL_ROOT",
		"REPOTOOLS_PREFIX_MODE", "REPOTOOLS_ADDR", "LOG_LEVEL", "LOG_FORMAT", "GH_TOKEN", "GITHUB_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

// run executes the root command against a local mirror root.
func run(t *testing.T, root string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	base := []string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--backend", "local",
		"--local-root", root,
	}
	cmd.SetArgs(append(base, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestTree(t *testing.T) {
	root := newMirrorRoot(t, testFiles)

	t.Run("immediate children", func(t *testing.T) {
		out, _, err := run(t, root, "", "tree", "octo/hello", "src")
		require.NoError(t, err)
		assert.Equal(t, "a.py (11 bytes)\nb.py (11 bytes)\n", out)
	})

	t.Run("recursive", func(t *testing.T) {
		out, _, err := run(t, root, "", "tree", "octo/hello", "--recursive")
		require.NoError(t, err)
		assert.Contains(t, out, "src/\n  a.py (11 bytes)\n  b.py (11 bytes)\n")
		assert.Contains(t, out, "README.md (6 bytes)\n")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, root, "", "tree", "octo/hello", "/lib/", "-r", "--json")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, true, decoded["status"])
		children := decoded["children"].([]any)
		require.Len(t, children, 1)
		assert.Equal(t, "lib/x.go", children[0].(map[string]any)["path"])
	})

	t.Run("literal prefix mode", func(t *testing.T) {
		out, _, err := run(t, root, "", "--prefix-mode", "literal", "tree", "octo/hello", "lib", "-r", "--json")
		require.Error(t, err)
		assert.Equal(t, exitcode.ExitDataErr, exitcode.FromError(err))
		assert.Contains(t, out, `"status": false`)
	})

	t.Run("missing repository", func(t *testing.T) {
		_, _, err := run(t, root, "", "tree", "octo/missing")
		require.Error(t, err)
		assert.Equal(t, exitcode.ExitNoInput, exitcode.FromError(err))
	})

	t.Run("bad repository argument", func(t *testing.T) {
		_, _, err := run(t, root, "", "tree", "octo/")
		require.Error(t, err)
		assert.Equal(t, exitcode.ExitUsage, exitcode.FromError(err))
	})
}

func TestSearch(t *testing.T) {
	root := newMirrorRoot(t, testFiles)

	out, _, err := run(t, root, "", "search", "octo/hello", "read")
	require.NoError(t, err)
	assert.Contains(t, out, "docs/readme")
	assert.NotContains(t, out, "README.md")

	out, _, err = run(t, root, "", "search", "octo/hello", "nothing-like-this")
	require.NoError(t, err)
	assert.Equal(t, "No matches found.\n", out)

	out, _, err = run(t, root, "", "search", "octo/hello", "lib", "--json")
	require.NoError(t, err)
	var decoded struct {
		Status bool `json:"status"`
		Result []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, decoded.Status)
	assert.Len(t, decoded.Result, 4)
}

func TestRead(t *testing.T) {
	root := newMirrorRoot(t, testFiles)

	out, _, err := run(t, root, "", "read", "octo/hello", "README.md")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, _, err = run(t, root, "", "read", "octo/hello", "src/a.py", "/src/b.py")
	require.NoError(t, err)
	assert.Equal(t, "==> src/a.py <==\nprint('a')\n\n==> /src/b.py <==\nprint('b')\n", out)

	out, _, err = run(t, root, "", "read", "octo/hello", "README.md", "nope.txt")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, exitcode.ExitNoInput, exitcode.FromError(err))
}

func TestCall(t *testing.T) {
	root := newMirrorRoot(t, testFiles)

	out, _, err := run(t, root, "", "call", "read_files_content", `{"owner":"octo","repo":"hello","paths":["README.md"]}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"status_msg": "ok"`)
	assert.Contains(t, out, `"content": "hello\n"`)

	out, _, err = run(t, root, `{"owner":"octo","repo":"hello","name":"src"}`, "call", "search_file_or_directory", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"path": "src/a.py"`)

	out, _, err = run(t, root, "", "call", "read_files_content", `{"owner":"octo","repo":"hello","paths":["a.txt"]}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errToolFailed)
	assert.Contains(t, out, `"status": false`)
	assert.NotContains(t, out, `"files"`)

	_, _, err = run(t, root, "", "call", "no_such_tool", `{}`)
	require.Error(t, err)
	assert.Equal(t, exitcode.ExitUsage, exitcode.FromError(err))
}

func TestTools(t *testing.T) {
	root := newMirrorRoot(t, testFiles)

	out, _, err := run(t, root, "", "tools")
	require.NoError(t, err)

	var tools []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tools))
	require.Len(t, tools, 3)
	assert.Equal(t, "read_project_structure", tools[0].Name)
}

func TestStatus(t *testing.T) {
	root := newMirrorRoot(t, testFiles)

	out, _, err := run(t, root, "", "status", "octo/hello", "--json")
	require.NoError(t, err)

	var info StatusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "local", info.Backend)
	assert.Equal(t, root, info.LocalRoot)
	assert.Equal(t, "main", info.DefaultBranch)
	assert.Empty(t, info.ProbeError)

	out, _, err = run(t, root, "", "status", "octo/missing")
	require.NoError(t, err)
	assert.Contains(t, out, "octo/missing unreachable")
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "", "--prefix-mode", "fuzzy", "tools")
	require.Error(t, err)
	assert.Equal(t, exitcode.ExitConfig, exitcode.FromError(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestMirror_RequiresLocalRoot(t *testing.T) {
	clearEnv(t)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "mirror", "octo/hello"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, exitcode.ExitConfig, exitcode.FromError(err))
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "repotools dev\n", out)
}

func TestWriteTree_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTree(&buf, nil))
	assert.Equal(t, "No entries found.\n", buf.String())
}

func TestInit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "repotools.yaml")

	cmd := NewRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "--prefix-mode", "literal", "init"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "(created)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "prefix_mode: literal")
}
