// Package exitcode maps repotools failures to process exit codes following
// sysexits.h conventions.
package exitcode

import (
	"errors"

	"github.com/ryantking/repotools/internal/agent"
	"github.com/ryantking/repotools/internal/forge"
	"github.com/ryantking/repotools/internal/repotree"
)

// Exit codes following sysexits.h conventions.
// These are standard exit codes used by Unix/Linux systems.
const (
	// ExitOK indicates successful completion.
	ExitOK = 0

	// ExitFailure indicates a failure with no more specific code.
	ExitFailure = 1

	// ExitUsage indicates command line usage error (incorrect arguments).
	ExitUsage = 64

	// ExitDataErr indicates data format error (input data was incorrect).
	ExitDataErr = 65

	// ExitNoInput indicates input file not found or unreadable.
	ExitNoInput = 66

	// ExitNoUser indicates user not found (e.g., authentication failed).
	ExitNoUser = 67

	// ExitNoHost indicates host not found (network error).
	ExitNoHost = 68

	// ExitUnavailable indicates service unavailable (temporary failure).
	ExitUnavailable = 69

	// ExitSoftware indicates internal software error (bug in program).
	ExitSoftware = 70

	// ExitOSErr indicates operating system error (e.g., can't fork).
	ExitOSErr = 71

	// ExitOSFile indicates critical OS file missing (e.g., can't create temp file).
	ExitOSFile = 72

	// ExitCantCreat indicates can't create output file.
	ExitCantCreat = 73

	// ExitIOErr indicates input/output error.
	ExitIOErr = 74

	// ExitTempFail indicates temporary failure (user is invited to retry).
	ExitTempFail = 75

	// ExitProtocol indicates remote error in protocol.
	ExitProtocol = 76

	// ExitNoPerm indicates permission denied.
	ExitNoPerm = 77

	// ExitConfig indicates configuration error.
	ExitConfig = 78
)

// Error attaches an explicit exit code to an error.
type Error struct {
	Code int
	Err  error
}

// Error returns the underlying error message.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with code. A nil err stays nil.
func New(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// FromError returns the exit code for err. Explicit codes win; otherwise the
// forge and tool error taxonomy decides.
func FromError(err error) int {
	if err == nil {
		return ExitOK
	}

	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}

	switch {
	case agent.IsInvalidInput(err):
		return ExitUsage
	case errors.Is(err, repotree.ErrMissingParent), errors.Is(err, forge.ErrNotDirectory):
		return ExitDataErr
	case forge.IsNotFound(err):
		return ExitNoInput
	case forge.IsUnauthorized(err):
		return ExitNoPerm
	case forge.IsRateLimited(err):
		return ExitTempFail
	case forge.IsTransport(err):
		return ExitUnavailable
	}
	return ExitFailure
}
