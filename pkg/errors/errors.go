// Package errors defines the sentinel errors shared across repfinder and an
// AppError type that carries the process exit code a failure should map to.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSupport    = errors.New("invalid support")
	ErrInvalidAlphabet   = errors.New("invalid alphabet")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrNotFound          = errors.New("not found")
	ErrInternal          = errors.New("internal error")
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ExitCode maps err to the exit status the CLI should terminate with.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidSupport),
		errors.Is(err, ErrInvalidAlphabet),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedFormat):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Is and As are re-exported so callers that import this package under the
// errors name keep access to the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
