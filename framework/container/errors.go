package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParameterNotFound is returned when a parameter, or a placeholder
	// naming one, is not defined.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrMalformedPlaceholder is returned for an unmatched % delimiter or a
	// placeholder token that is not a valid parameter name.
	ErrMalformedPlaceholder = errors.New("malformed placeholder")

	// ErrInvalidParameterName is returned when a parameter name is empty.
	ErrInvalidParameterName = errors.New("invalid parameter name")

	// ErrInvalidParameterValue is returned for values the parameter store
	// cannot hold, or for arrays and maps embedded inside a larger string.
	ErrInvalidParameterValue = errors.New("invalid parameter value")

	// ErrCircularParameter is returned when a parameter refers back to itself
	// through its placeholders.
	ErrCircularParameter = errors.New("circular parameter reference")

	// ErrDuplicateServiceID is returned when a service id is registered twice
	// without the override flag.
	ErrDuplicateServiceID = errors.New("duplicate service id")

	// ErrServiceNotFound is returned when no definition exists for an id.
	ErrServiceNotFound = errors.New("service not found")

	// ErrContainerFrozen is returned when parameters or definitions are
	// changed after the first Get.
	ErrContainerFrozen = errors.New("container frozen")

	// ErrCircularReference is returned when a service depends on itself. The
	// error message includes the full chain.
	ErrCircularReference = errors.New("circular reference detected")

	// ErrConstructionFailed is returned when a factory fails.
	ErrConstructionFailed = errors.New("construction failed")

	// ErrMethodCallFailed is returned when a method call on a freshly built
	// instance fails.
	ErrMethodCallFailed = errors.New("method call failed")

	// ErrInvalidDefinition is returned for malformed definition records.
	ErrInvalidDefinition = errors.New("invalid definition")
)

// CircularReferenceError reports the chain of ids that led into a cycle. The
// last entry of Path repeats an earlier one.
type CircularReferenceError struct {
	Path []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularReference, strings.Join(e.Path, " -> "))
}

func (e *CircularReferenceError) Is(target error) bool { return target == ErrCircularReference }

// ConstructionError wraps a factory failure with the service being built and
// the resolved arguments it was handed.
type ConstructionError struct {
	ServiceID string
	Args      []any
	Err       error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: service %q with args %v: %v", ErrConstructionFailed, e.ServiceID, e.Args, e.Err)
}

func (e *ConstructionError) Is(target error) bool { return target == ErrConstructionFailed }

func (e *ConstructionError) Unwrap() error { return e.Err }

// MethodCallError wraps a failed method call. Calls applied before it are
// not rolled back.
type MethodCallError struct {
	ServiceID string
	Method    string
	Args      []any
	Err       error
}

func (e *MethodCallError) Error() string {
	return fmt.Sprintf("%s: service %q method %s with args %v: %v", ErrMethodCallFailed, e.ServiceID, e.Method, e.Args, e.Err)
}

func (e *MethodCallError) Is(target error) bool { return target == ErrMethodCallFailed }

func (e *MethodCallError) Unwrap() error { return e.Err }

// ResolveError is what Get returns. ID is the service the caller asked for;
// the wrapped error names the dependency that actually failed.
type ResolveError struct {
	ID  string
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.ID, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
