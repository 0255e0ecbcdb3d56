package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/jerseyshop/storefront/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrAuthRequired is returned when an operation needs a signed-in user and no token is stored.
// ReturnTo is the path the user should come back to after signing in.
type ErrAuthRequired struct {
	ReturnTo string
}

func (e *ErrAuthRequired) Error() string {
	if e.ReturnTo != "" {
		return "sign in required (return to " + e.ReturnTo + ")"
	}
	return "sign in required"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrBackend is returned when the backend answered with a rejection.
// Message carries the backend's own text when it sent one.
type ErrBackend struct {
	StatusCode int
	Message    string
}

func (e *ErrBackend) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// ErrUnavailable is returned when the backend could not be reached at all.
// Timeouts, refused connections and DNS failures all end up here.
type ErrUnavailable struct {
	Op  string
	Err error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Err
}

// ErrMalformedResponse is returned when a successful response does not have the expected shape
type ErrMalformedResponse struct {
	Endpoint string
	Reason   string
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// IsNotFound reports whether err (or anything it wraps) is an *ErrNotFound
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return stderrors.As(err, &nf)
}

// UserMessage turns an error into the notification text shown to a shopper.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		authErr      *ErrAuthRequired
		validation   *ErrValidation
		backend      *ErrBackend
		unauthorized *ErrUnauthorized
		transition   *ErrInvalidStateTransition
	)
	switch {
	case stderrors.As(err, &authErr):
		return "Please sign in to continue"
	case stderrors.As(err, &validation):
		if validation.Message != "" {
			return validation.Message
		}
		return "Please fix the errors in the form"
	case stderrors.As(err, &backend):
		if backend.Message != "" {
			return backend.Message
		}
		return "Something went wrong. Please try again."
	case stderrors.As(err, &unauthorized):
		return unauthorized.Error()
	case stderrors.As(err, &transition):
		return fmt.Sprintf("Order cannot be moved from %s to %s", transition.From, transition.To)
	default:
		return "Something went wrong. Please try again."
	}
}
