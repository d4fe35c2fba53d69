// Package agent exposes repository inspection as named tools with JSON
// inputs and outputs, suitable for an LLM-driven agent.
package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Sentinel errors for agent package.
var (
	// ErrUnknownTool indicates no tool is registered under the requested name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool indicates a tool name was registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrInvalidInput indicates the tool input is not valid JSON or does not
	// satisfy the tool's input schema.
	ErrInvalidInput = errors.New("invalid tool input")
)

// InputError describes tool input rejected before the handler ran.
type InputError struct {
	Tool    string // tool name
	Pointer string // JSON pointer of the offending value, empty for the whole document
	Reason  string // human-readable reason
	Err     error  // underlying decode or schema error
}

// Error returns a formatted error message.
func (e *InputError) Error() string {
	if e.Pointer != "" {
		return fmt.Sprintf("invalid input for %s at %s: %s", e.Tool, e.Pointer, e.Reason)
	}
	return fmt.Sprintf("invalid input for %s: %s", e.Tool, e.Reason)
}

// Unwrap returns ErrInvalidInput and the underlying error.
func (e *InputError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Err}
}

// newInputError converts a JSON decode or kin-openapi validation failure.
func newInputError(tool string, err error) *InputError {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		ie := &InputError{Tool: tool, Reason: schemaErr.Reason, Err: err}
		if ptr := schemaErr.JSONPointer(); len(ptr) > 0 {
			ie.Pointer = "/" + strings.Join(ptr, "/")
		}
		return ie
	}
	return &InputError{Tool: tool, Reason: err.Error(), Err: err}
}
