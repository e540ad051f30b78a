package service

import (
	"errors"
	"fmt"

	"github.com/Hitesh-Saha/FeastAI/internal/schema"
)

// Kind classifies a service failure so the transport can pick a status code
// and the caller can decide whether a retry makes sense.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindTimeout
	KindUpstream
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTimeout:
		return "timeout"
	case KindUpstream:
		return "upstream"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the error type returned by every service operation. Message is
// safe to show to users; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindInternal
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// validationError carries field messages from a schema.ValidationError when err has one.
func validationError(msg string, err error) *Error {
	e := &Error{Kind: KindValidation, Message: msg, Err: err}
	if verr, ok := schema.AsValidationError(err); ok {
		e.Fields = verr.Fields
	}
	return e
}

func fieldError(msg, field, detail string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: msg,
		Fields:  map[string][]string{field: {detail}},
	}
}

const (
	msgAuthRequired      = "Authentication required"
	msgGenerationFailed  = "Failed to generate recipe. Please try again."
	msgGenerationTimeout = "Recipe generation timed out. Please try again."
	msgInvalidGenerated  = "Invalid recipe data generated. Please try again."
	msgRecipeNotFound    = "Recipe not found"
	msgNotOwned          = "Recipe not found or not owned by user"
	msgNoPermission      = "You don't have permission to modify this recipe"
	msgSomethingWrong    = "Something went wrong. Please try again."
)
