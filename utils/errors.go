package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error kinds shared by stores, workflows and controllers. Test with
// errors.Is; build client-facing errors with NewError.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)

// Error is a classified failure whose Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
	// Verbatim messages already follow the client's field names and are
	// never recased.
	Verbatim bool
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StatusFor maps an error to the HTTP status it should be reported with.
// Anything outside the known kinds is an unexpected failure.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorMessage picks the client-facing text for err. Unexpected failures
// get the fallback so storage details never reach the client.
func ErrorMessage(err error, fallback string) string {
	if StatusFor(err) == fiber.StatusInternalServerError {
		return fallback
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Verbatim {
			return appErr.Message
		}
		return capitalize(appErr.Message)
	}
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrValidation, ErrConflict} {
		if errors.Is(err, kind) {
			return capitalize(kind.Error())
		}
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
