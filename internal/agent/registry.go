package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"

	"github.com/ryantking/repotools/internal/forge"
)

// statusOK is the status message of every successful invocation.
const statusOK = "ok"

// Status is the outcome envelope shared by every tool output.
// Callers must check Status rather than expect an error.
type Status struct {
	Status    bool   `json:"status"`
	StatusMsg string `json:"status_msg"`
}

// OK returns a successful Status.
func OK() Status {
	return Status{Status: true, StatusMsg: statusOK}
}

// Outcome returns s. Tool outputs embed Status, so every output satisfies Result.
func (s Status) Outcome() Status {
	return s
}

// Result is implemented by every value ExecuteTool returns.
type Result interface {
	Outcome() Status
}

// Failure returns a failed Status carrying a readable description of err.
func Failure(err error) Status {
	return Status{Status: false, StatusMsg: forge.Describe(err)}
}

// ToolHandler executes a tool. The input has already been validated against
// the tool's schema. A returned error is reported to the caller as a Failure.
type ToolHandler func(ctx context.Context, input json.RawMessage) (Result, error)

// Tool describes a registered tool.
type Tool struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputSchema *openapi3.Schema `json:"input_schema"`
}

// ToolRegistry manages tool definitions and handlers.
type ToolRegistry struct {
	tools    []Tool
	handlers map[string]ToolHandler
	schemas  map[string]*openapi3.Schema
	logger   *slog.Logger
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry(logger *slog.Logger) *ToolRegistry {
	return &ToolRegistry{
		tools:    []Tool{},
		handlers: make(map[string]ToolHandler),
		schemas:  make(map[string]*openapi3.Schema),
		logger:   logger,
	}
}

// RegisterTool registers a tool with the registry.
// name: Tool name (must be unique)
// description: Tool description
// schema: JSON schema for tool input; nil accepts any object
// handler: Function to execute when tool is called
func (r *ToolRegistry) RegisterTool(name, description string, schema *openapi3.Schema, handler ToolHandler) error {
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	if schema == nil {
		schema = openapi3.NewObjectSchema()
	}

	r.tools = append(r.tools, Tool{Name: name, Description: description, InputSchema: schema})
	r.handlers[name] = handler
	r.schemas[name] = schema
	return nil
}

// Tools returns the registered tools in registration order.
func (r *ToolRegistry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Tool returns the tool registered under name.
func (r *ToolRegistry) Tool(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// ExecuteTool executes a tool by name with the given JSON input.
// The only error returned is ErrUnknownTool; every other failure, including
// invalid input, comes back as a result whose Status is false.
func (r *ToolRegistry) ExecuteTool(ctx context.Context, name string, input json.RawMessage) (Result, error) {
	handler, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	logger := r.logger.With("tool", name, "invocation_id", uuid.NewString())
	start := time.Now()

	result, err := r.invoke(ctx, name, handler, input)
	if err != nil {
		logger.WarnContext(ctx, "tool failed", "duration", time.Since(start), "error", err)
		return Failure(err), nil
	}

	logger.InfoContext(ctx, "tool succeeded", "duration", time.Since(start))
	return result, nil
}

func (r *ToolRegistry) invoke(ctx context.Context, name string, handler ToolHandler, input json.RawMessage) (Result, error) {
	if len(bytes.TrimSpace(input)) == 0 {
		input = json.RawMessage("{}")
	}

	var value any
	if err := json.Unmarshal(input, &value); err != nil {
		return nil, newInputError(name, err)
	}
	if err := r.schemas[name].VisitJSON(value); err != nil {
		return nil, newInputError(name, err)
	}
	return handler(ctx, input)
}
