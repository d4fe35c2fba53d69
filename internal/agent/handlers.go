package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// decodeInput unmarshals validated tool input into T.
func decodeInput[T any](input json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(input, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return v, nil
}

// newReadProjectStructureHandler creates a handler for the read_project_structure tool.
func newReadProjectStructureHandler(t *RepoTools) ToolHandler {
	return func(ctx context.Context, input json.RawMessage) (Result, error) {
		in, err := decodeInput[ProjectStructureInput](input)
		if err != nil {
			return nil, err
		}
		return t.ReadProjectStructure(ctx, in)
	}
}

// newSearchHandler creates a handler for the search_file_or_directory tool.
func newSearchHandler(t *RepoTools) ToolHandler {
	return func(ctx context.Context, input json.RawMessage) (Result, error) {
		in, err := decodeInput[SearchInput](input)
		if err != nil {
			return nil, err
		}
		return t.SearchFileOrDirectory(ctx, in)
	}
}

// newReadFilesContentHandler creates a handler for the read_files_content tool.
func newReadFilesContentHandler(t *RepoTools) ToolHandler {
	return func(ctx context.Context, input json.RawMessage) (Result, error) {
		in, err := decodeInput[FilesContentInput](input)
		if err != nil {
			return nil, err
		}
		return t.ReadFilesContent(ctx, in)
	}
}
