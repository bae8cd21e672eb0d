// Package errors provides structured error handling for the binding engine
// and the composition root.
//
// Programmer errors (missing view registrations, use after dispose, type
// mismatches) are returned to the caller as typed values that work with the
// standard library's errors.Is and errors.As. Failures that happen on a
// dispatch loop, where no caller is left to return to, are sent to the global
// [Handler] through [Report] and [ReportPanic].
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRegistration indicates a missing or conflicting view registration.
	KindRegistration
	// KindDisposed indicates use of a view-model after it was disposed.
	KindDisposed
	// KindTypeMismatch indicates an instance not assignable to the expected type.
	KindTypeMismatch
	// KindContainer indicates a service container failure.
	KindContainer
	// KindDispatch indicates a failure while running a scheduled callback.
	KindDispatch
	// KindConfig indicates invalid configuration.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindDisposed:
		return "disposed"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindContainer:
		return "container"
	case KindDispatch:
		return "dispatch"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

var (
	// ErrNoView matches every [RegistrationError].
	ErrNoView = errors.New("no view registered")

	// ErrDisposed matches every [DisposedError].
	ErrDisposed = errors.New("used after dispose")

	// ErrTypeMismatch matches every [TypeMismatchError].
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrRootAssigned is returned when a view-model is attached to a second,
	// different composition root.
	ErrRootAssigned = errors.New("composition root already assigned")

	// ErrServiceNotFound matches every [MissingServiceError].
	ErrServiceNotFound = errors.New("service not registered")

	// ErrNoRoot is returned when a view-model that was never attached to a
	// composition root asks for a nested view.
	ErrNoRoot = errors.New("view-model has no composition root")

	// ErrPropertyName is returned when a binding is requested without a
	// property name.
	ErrPropertyName = errors.New("property name required")
)

// Error represents a structured error reported by the binding engine.
type Error struct {
	// Op is the operation that failed (e.g., "composition.ResolveView").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// ViewModel is the view-model type or instance, if applicable.
	ViewModel string
	// Property is the bound property name, if applicable.
	Property string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s [%s] property=%s: %v", e.Op, e.Kind, e.Property, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "dispatch.Queue").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// RegistrationError is returned when a view is resolved for a view-model
// type that has no registration.
type RegistrationError struct {
	// ViewModel is the type name of the unregistered view-model.
	ViewModel string
}

func (e *RegistrationError) Error() string {
	// Example: no view registered for view-model "*app.CounterViewModel"
	return "no view registered for view-model " + strconv.Quote(e.ViewModel)
}

// Is reports whether target is [ErrNoView].
func (e *RegistrationError) Is(target error) bool { return target == ErrNoView }

// DuplicateViewError is returned when two registrations use the same key and
// duplicates are rejected.
type DuplicateViewError struct {
	ViewModel string
}

func (e *DuplicateViewError) Error() string {
	return "duplicate view registration for view-model " + strconv.Quote(e.ViewModel)
}

// DisposedError is returned when a disposed view-model is asked to bind,
// subscribe or take ownership of a resource.
type DisposedError struct {
	// Op is the rejected operation (e.g., "viewmodel.Bind").
	Op string
	// Property is the property name, empty for unkeyed operations.
	Property string
}

func (e *DisposedError) Error() string {
	if e.Property != "" {
		return e.Op + ": view-model used after dispose (property " + strconv.Quote(e.Property) + ")"
	}
	return e.Op + ": view-model used after dispose"
}

// Is reports whether target is [ErrDisposed].
func (e *DisposedError) Is(target error) bool { return target == ErrDisposed }

// TypeMismatchError is returned when a value is not assignable to the type
// its consumer requires.
type TypeMismatchError struct {
	// Op is the operation that observed the mismatch.
	Op string
	// Want is the required type.
	Want string
	// Got is the type actually supplied.
	Got string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: got %s, want %s", e.Op, e.Got, e.Want)
}

// Is reports whether target is [ErrTypeMismatch].
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// MissingServiceError is returned by a service container asked for a type it
// cannot construct.
type MissingServiceError struct {
	Service string
}

func (e *MissingServiceError) Error() string {
	return "service " + strconv.Quote(e.Service) + " not registered"
}

// Is reports whether target is [ErrServiceNotFound].
func (e *MissingServiceError) Is(target error) bool { return target == ErrServiceNotFound }

// DuplicateServiceError is returned when a service type is registered twice.
type DuplicateServiceError struct {
	Service string
}

func (e *DuplicateServiceError) Error() string {
	return "duplicate service registration " + strconv.Quote(e.Service)
}

// Handler receives errors reported asynchronously.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
