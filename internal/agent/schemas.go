package agent

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Input schemas for the repository tools. Handlers receive input only after
// it validates against the tool's schema.

// ProjectStructureSchema defines the schema for the read_project_structure tool.
var ProjectStructureSchema = objectSchema(
	map[string]*openapi3.Schema{
		"owner":     repoNameProperty("Repository owner (user or organization)"),
		"repo":      repoNameProperty("Repository name"),
		"path":      stringProperty("Directory path relative to the repository root; empty for the root"),
		"recursion": boolProperty("Return the full subtree under path instead of its immediate children"),
	},
	"owner", "repo",
)

// SearchSchema defines the schema for the search_file_or_directory tool.
var SearchSchema = objectSchema(
	map[string]*openapi3.Schema{
		"owner": repoNameProperty("Repository owner (user or organization)"),
		"repo":  repoNameProperty("Repository name"),
		"name":  stringProperty("Case-sensitive substring to look for in file and directory paths; empty matches everything"),
	},
	"owner", "repo", "name",
)

// FilesContentSchema defines the schema for the read_files_content tool.
var FilesContentSchema = objectSchema(
	map[string]*openapi3.Schema{
		"owner": repoNameProperty("Repository owner (user or organization)"),
		"repo":  repoNameProperty("Repository name"),
		"paths": withDescription(
			openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema().WithMinLength(1)),
			"File paths relative to the repository root",
		),
	},
	"owner", "repo", "paths",
)

func objectSchema(properties map[string]*openapi3.Schema, required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for name, prop := range properties {
		s.WithProperty(name, prop)
	}
	s.Required = required
	return s
}

func repoNameProperty(description string) *openapi3.Schema {
	return withDescription(openapi3.NewStringSchema().WithMinLength(1), description)
}

func stringProperty(description string) *openapi3.Schema {
	return withDescription(openapi3.NewStringSchema(), description)
}

func boolProperty(description string) *openapi3.Schema {
	return withDescription(openapi3.NewBoolSchema(), description)
}

func withDescription(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}
