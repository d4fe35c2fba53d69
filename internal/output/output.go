// Package output writes command results and errors for the repotools CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ryantking/repotools/internal/forge"
)

// Stderr is where Error and Errorf write. Tests may replace it.
var Stderr io.Writer = os.Stderr

// Error prints err to Stderr with a hint for known forge failures.
func Error(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(Stderr, "Error: %s\n", forge.Describe(err)) //nolint:errcheck // best effort
}

// Errorf prints a formatted error message to Stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(Stderr, "Error: "+format+"\n", args...) //nolint:errcheck // best effort
}

// WriteJSON writes v to w as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// SuccessJSON writes v to stdout as indented JSON.
func SuccessJSON(v any) error {
	return WriteJSON(os.Stdout, v)
}
