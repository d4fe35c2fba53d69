package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/sync/errgroup"

	"github.com/ryantking/repotools/internal/config"
	"github.com/ryantking/repotools/internal/forge"
	"github.com/ryantking/repotools/internal/repotree"
)

// Tool names.
const (
	ToolReadProjectStructure  = "read_project_structure"
	ToolSearchFileOrDirectory = "search_file_or_directory"
	ToolReadFilesContent      = "read_files_content"
)

// ProjectStructureInput is the input of read_project_structure.
type ProjectStructureInput struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Path      string `json:"path"`
	Recursion bool   `json:"recursion"`
}

// ProjectStructureOutput is the output of read_project_structure.
type ProjectStructureOutput struct {
	Status
	Children []*repotree.Node `json:"children,omitzero"`
}

// SearchInput is the input of search_file_or_directory.
type SearchInput struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Name  string `json:"name"`
}

// SearchOutput is the output of search_file_or_directory.
type SearchOutput struct {
	Status
	Result []repotree.SearchResult `json:"result,omitzero"`
}

// FilesContentInput is the input of read_files_content.
type FilesContentInput struct {
	Owner string   `json:"owner"`
	Repo  string   `json:"repo"`
	Paths []string `json:"paths"`
}

// FileContent is one fetched file. Path is the path as the caller gave it.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FilesContentOutput is the output of read_files_content.
type FilesContentOutput struct {
	Status
	Files []FileContent `json:"files,omitzero"`
}

// Options configures the repository tools.
type Options struct {
	// PrefixMode selects how a recursive listing root captures entries.
	PrefixMode repotree.PrefixMode
	// FetchConcurrency bounds parallel raw-file fetches; values below 1 mean 1.
	FetchConcurrency int
}

// RepoTools implements the repository tools on top of a forge.Source.
type RepoTools struct {
	source forge.Source
	opts   Options
}

// NewRepoTools creates RepoTools reading from source.
func NewRepoTools(source forge.Source, opts Options) *RepoTools {
	if opts.FetchConcurrency < 1 {
		opts.FetchConcurrency = 1
	}
	return &RepoTools{source: source, opts: opts}
}

// ReadProjectStructure lists the directory at in.Path. With Recursion the
// full subtree is rebuilt from one recursive listing of the default branch;
// otherwise only the immediate children are listed.
func (t *RepoTools) ReadProjectStructure(ctx context.Context, in ProjectStructureInput) (*ProjectStructureOutput, error) {
	path := repotree.Normalize(in.Path)

	var children []*repotree.Node
	if in.Recursion {
		entries, err := t.defaultTree(ctx, in.Owner, in.Repo)
		if err != nil {
			return nil, err
		}
		children, err = repotree.BuildTree(entries, path, t.opts.PrefixMode)
		if err != nil {
			return nil, err
		}
	} else {
		items, err := t.source.Contents(ctx, in.Owner, in.Repo, path)
		if err != nil {
			return nil, err
		}
		children = repotree.ListChildren(path, items)
	}

	if children == nil {
		children = []*repotree.Node{}
	}
	return &ProjectStructureOutput{Status: OK(), Children: children}, nil
}

// SearchFileOrDirectory returns every entry of the default branch whose
// path contains in.Name.
func (t *RepoTools) SearchFileOrDirectory(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	entries, err := t.defaultTree(ctx, in.Owner, in.Repo)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Status: OK(), Result: repotree.Search(entries, in.Name)}, nil
}

// ReadFilesContent fetches the raw content of every path. Results follow
// input order. Any failed fetch fails the whole call.
func (t *RepoTools) ReadFilesContent(ctx context.Context, in FilesContentInput) (*FilesContentOutput, error) {
	files := make([]FileContent, len(in.Paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.FetchConcurrency)
	for i, p := range in.Paths {
		g.Go(func() error {
			content, err := t.source.RawFile(gctx, in.Owner, in.Repo, repotree.Normalize(p))
			if err != nil {
				return err
			}
			files[i] = FileContent{Path: p, Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &FilesContentOutput{Status: OK(), Files: files}, nil
}

func (t *RepoTools) defaultTree(ctx context.Context, owner, repo string) ([]repotree.Entry, error) {
	branch, err := t.source.DefaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	return t.source.Tree(ctx, owner, repo, branch)
}

// RegisterRepoTools registers read_project_structure, search_file_or_directory
// and read_files_content backed by source.
func RegisterRepoTools(registry *ToolRegistry, source forge.Source, opts Options) error {
	return NewRepoTools(source, opts).Register(registry)
}

// Register adds the repository tools to registry.
func (t *RepoTools) Register(registry *ToolRegistry) error {
	tools := []struct {
		name        string
		description string
		schema      *openapi3.Schema
		handler     ToolHandler
	}{
		{
			name: ToolReadProjectStructure,
			description: "List the files and directories under a path of a repository. " +
				"With recursion the whole subtree is returned as nested children; otherwise only the immediate children",
			schema:  ProjectStructureSchema,
			handler: newReadProjectStructureHandler(t),
		},
		{
			name:        ToolSearchFileOrDirectory,
			description: "Find files and directories of a repository whose path contains the given name",
			schema:      SearchSchema,
			handler:     newSearchHandler(t),
		},
		{
			name:        ToolReadFilesContent,
			description: "Read the raw contents of files in a repository. Fails as a whole if any file cannot be read",
			schema:      FilesContentSchema,
			handler:     newReadFilesContentHandler(t),
		},
	}

	for _, tool := range tools {
		if err := registry.RegisterTool(tool.name, tool.description, tool.schema, tool.handler); err != nil {
			return fmt.Errorf("failed to register %s tool: %w", tool.name, err)
		}
	}
	return nil
}

// NewRepoToolsFromConfig creates RepoTools over the source selected by cfg.
func NewRepoToolsFromConfig(cfg *config.Config, logger *slog.Logger) (*RepoTools, error) {
	source, err := forge.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s source: %w", cfg.Backend, err)
	}

	mode, err := repotree.ParsePrefixMode(cfg.PrefixMode)
	if err != nil {
		return nil, err
	}

	return NewRepoTools(source, Options{
		PrefixMode:       mode,
		FetchConcurrency: cfg.FetchConcurrency,
	}), nil
}

// NewRepoToolRegistry creates a tool registry with the repository tools
// registered against the source selected by cfg.
func NewRepoToolRegistry(cfg *config.Config, logger *slog.Logger) (*ToolRegistry, error) {
	tools, err := NewRepoToolsFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := NewToolRegistry(logger)
	if err := tools.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register repository tools: %w", err)
	}
	return registry, nil
}
