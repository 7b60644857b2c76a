package failures

import (
	"errors"
	"fmt"
	"strings"
)

const (
	errorMessageTemplateConstant        = "%s %s: %s"
	errorCauseSuffixTemplateConstant    = "%s: %v"
	errorWithoutSubjectTemplateConstant = "%s: %s"
	unknownFailureMessageConstant       = "unknown failure"
)

// Kind classifies failures by how callers are expected to react to them.
type Kind string

// Supported failure kinds.
const (
	// KindValidation marks malformed inputs rejected before any side effect.
	KindValidation Kind = Kind("validation")
	// KindPrecondition marks state checks that failed before the stage mutated anything.
	KindPrecondition Kind = Kind("precondition")
	// KindPartialFailure marks failures after earlier stages already left side effects behind.
	KindPartialFailure Kind = Kind("partial_failure")
	// KindObservation marks a failed scan or query confined to a single application.
	KindObservation Kind = Kind("observation")
	// KindConfiguration marks missing templates, storage roots, or output locations.
	KindConfiguration Kind = Kind("configuration")
)

// Error is the common failure value returned at operation boundaries.
type Error struct {
	Kind      Kind
	Operation string
	Subject   string
	Message   string
	Cause     error
}

// New builds an Error without an underlying cause.
func New(kind Kind, operation string, subject string, message string) Error {
	return Error{Kind: kind, Operation: operation, Subject: subject, Message: message}
}

// Wrap builds an Error around a lower-level cause.
func Wrap(kind Kind, operation string, subject string, message string, cause error) Error {
	return Error{Kind: kind, Operation: operation, Subject: subject, Message: message, Cause: cause}
}

// Error describes the failure, including the offending subject and cause.
func (failure Error) Error() string {
	message := strings.TrimSpace(failure.Message)
	if len(message) == 0 {
		message = unknownFailureMessageConstant
	}

	var description string
	if len(strings.TrimSpace(failure.Subject)) == 0 {
		description = fmt.Sprintf(errorWithoutSubjectTemplateConstant, failure.Operation, message)
	} else {
		description = fmt.Sprintf(errorMessageTemplateConstant, failure.Operation, failure.Subject, message)
	}

	if failure.Cause == nil {
		return description
	}
	return fmt.Sprintf(errorCauseSuffixTemplateConstant, description, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure Error) Unwrap() error {
	return failure.Cause
}

// FailureKind reports the failure classification.
func (failure Error) FailureKind() Kind {
	return failure.Kind
}

// Classified is implemented by errors that carry a failure Kind.
type Classified interface {
	error
	FailureKind() Kind
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) (Kind, bool) {
	var classified Classified
	if !errors.As(err, &classified) {
		return "", false
	}
	return classified.FailureKind(), true
}

// IsKind reports whether the error chain carries the provided kind.
func IsKind(err error, kind Kind) bool {
	resolvedKind, resolved := KindOf(err)
	return resolved && resolvedKind == kind
}
