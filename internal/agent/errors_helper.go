package agent

import (
	"errors"
)

// IsUnknownTool checks if an error is ErrUnknownTool.
func IsUnknownTool(err error) bool {
	return errors.Is(err, ErrUnknownTool)
}

// IsInvalidInput checks if an error is ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// AsInputError checks if an error is an InputError and extracts it.
func AsInputError(err error, target **InputError) bool {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		*target = inputErr
		return true
	}
	return false
}
