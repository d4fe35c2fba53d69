package git

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMemRepo builds an in-memory repository on branch main with files committed.
func newMemRepo(t *testing.T, files map[string]string) *Repo {
	t.Helper()

	fs := memfs.New()
	r, err := gogit.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	require.NoError(t, r.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

	for path, content := range files {
		require.NoError(t, util.WriteFile(fs, path, []byte(content), 0644))
	}

	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(0, 0)},
	})
	require.NoError(t, err)

	return FromRepository(r)
}

func TestRepo_DefaultBranch(t *testing.T) {
	repo := newMemRepo(t, map[string]string{"README.md": "hi"})

	branch, err := repo.DefaultBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestRepo_WalkListsDirectoriesBeforeContents(t *testing.T) {
	repo := newMemRepo(t, map[string]string{
		"README.md":       "hello",
		"src/a.py":        "print(1)",
		"src/pkg/b.py":    "x",
		"docs/index.html": "<p>",
	})

	tree, err := repo.Tree("main")
	require.NoError(t, err)

	seen := map[string]int{}
	var order []Entry
	require.NoError(t, repo.Walk(tree, func(e Entry) error {
		seen[e.Path] = len(order)
		order = append(order, e)
		return nil
	}))

	require.Len(t, order, 7)
	assert.Less(t, seen["src"], seen["src/a.py"])
	assert.Less(t, seen["src/pkg"], seen["src/pkg/b.py"])
	assert.Less(t, seen["docs"], seen["docs/index.html"])

	readme := order[seen["README.md"]]
	assert.Equal(t, "file", readme.Type)
	assert.Equal(t, int64(5), readme.Size)
	assert.True(t, order[seen["src"]].IsDir())
}

func TestRepo_List(t *testing.T) {
	repo := newMemRepo(t, map[string]string{
		"README.md":    "hello",
		"src/a.py":     "print(1)",
		"src/pkg/b.py": "x",
	})
	tree, err := repo.Tree("main")
	require.NoError(t, err)

	root, err := repo.List(tree, "")
	require.NoError(t, err)
	names := []string{}
	for _, e := range root {
		names = append(names, e.Path)
	}
	assert.ElementsMatch(t, []string{"README.md", "src"}, names)

	src, err := repo.List(tree, "src")
	require.NoError(t, err)
	require.Len(t, src, 2)
	for _, e := range src {
		switch e.Name {
		case "a.py":
			assert.Equal(t, "src/a.py", e.Path)
			assert.Equal(t, int64(8), e.Size)
		case "pkg":
			assert.True(t, e.IsDir())
		default:
			t.Errorf("unexpected entry %q", e.Name)
		}
	}

	_, err = repo.List(tree, "README.md")
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = repo.List(tree, "missing")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestRepo_ReadFile(t *testing.T) {
	repo := newMemRepo(t, map[string]string{"src/a.py": "print(1)"})
	tree, err := repo.Tree("main")
	require.NoError(t, err)

	content, err := repo.ReadFile(tree, "src/a.py")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", content)

	_, err = repo.ReadFile(tree, "src/missing.py")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestRepo_TreeUnknownRef(t *testing.T) {
	repo := newMemRepo(t, map[string]string{"a": "b"})

	_, err := repo.Tree("does-not-exist")
	assert.ErrorIs(t, err, ErrRefNotFound)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotInGitRepo)
}
