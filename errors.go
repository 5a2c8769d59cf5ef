package ecovalley

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the scorers, the coordinator and the
// catalog wraps exactly one of these so callers can classify with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service error")
	ErrInitialization  = errors.New("initialization error")
)

// Validationf returns an ErrValidation carrying a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf returns an ErrNotFound carrying a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// ExternalService tags err as an ErrExternalService failure of op. Errors that
// already carry the kind are only given the extra context.
func ExternalService(op string, err error) error {
	if errors.Is(err, ErrExternalService) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrExternalService, err)
}

// Initialization tags err as an ErrInitialization failure of op.
func Initialization(op string, err error) error {
	if errors.Is(err, ErrInitialization) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInitialization, err)
}

// Kind returns the error kind wrapped by err, or nil if err carries none.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrExternalService, ErrInitialization} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
