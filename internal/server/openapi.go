package server

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/ryantking/repotools/internal/agent"
)

// resultSchema describes the envelope every tool result shares. Tool-specific
// fields (children, result, files) are allowed alongside it.
func resultSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewBoolSchema()).
		WithProperty("status_msg", openapi3.NewStringSchema())
	s.Required = []string{"status", "status_msg"}
	return s
}

// Document describes the tool API as an OpenAPI 3 document.
func Document(registry *agent.ToolRegistry, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "repotools",
			Description: "Repository inspection tools",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, tool := range registry.Tools() {
		op := openapi3.NewOperation()
		op.OperationID = tool.Name
		op.Summary = tool.Description
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(tool.InputSchema),
		}
		op.AddResponse(http.StatusOK, openapi3.NewResponse().
			WithDescription("Tool result; check status").
			WithJSONSchema(resultSchema()))
		op.AddResponse(http.StatusNotFound, openapi3.NewResponse().WithDescription("Unknown tool"))
		doc.AddOperation("/tools/"+tool.Name, http.MethodPost, op)
	}
	return doc
}
