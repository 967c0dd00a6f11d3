package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("function_not_found")
	ErrInvalidArgument = errors.New("invalid_argument")
	ErrExecution       = errors.New("execution_failed")
	ErrTimeout         = errors.New("timeout")
	ErrUnknownCategory = errors.New("unknown_category")
)

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("function %q is not registered", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ArgumentValidationError names the first declared argument whose value does
// not match the schema.
type ArgumentValidationError struct {
	Function string
	Field    string
	Reason   string
}

func (e *ArgumentValidationError) Error() string {
	return fmt.Sprintf("function %q: argument %q %s", e.Function, e.Field, e.Reason)
}

func (e *ArgumentValidationError) Is(target error) bool { return target == ErrInvalidArgument }

// ExecutionError wraps a failure raised by an implementation. Error() never
// includes the cause; use errors.Unwrap to reach it for logging.
type ExecutionError struct {
	Function string
	Cause    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("function %q failed", e.Function)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// TimeoutError reports that an implementation exceeded its call budget. The
// implementation may still be running; its eventual result is dropped.
type TimeoutError struct {
	Function string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("function %q timed out after %s", e.Function, e.After)
	}
	return fmt.Sprintf("function %q timed out", e.Function)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// UnknownCategoryError is returned by LoadBuiltins. Categories listed in
// Applied were registered before the unknown one was reached and stay loaded.
type UnknownCategoryError struct {
	Category string
	Applied  []string
}

func (e *UnknownCategoryError) Error() string {
	if len(e.Applied) == 0 {
		return fmt.Sprintf("unknown builtin category %q", e.Category)
	}
	return fmt.Sprintf("unknown builtin category %q (applied: %s)", e.Category, strings.Join(e.Applied, ","))
}

func (e *UnknownCategoryError) Is(target error) bool { return target == ErrUnknownCategory }

// Code returns the stable error code of a registry error, or "" when err is
// not one. An ExecutionError is always execution_failed, whatever its cause.
func Code(err error) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return ErrExecution.Error()
	}
	for _, sentinel := range []error{ErrNotFound, ErrInvalidArgument, ErrTimeout, ErrExecution, ErrUnknownCategory} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}

// PublicMessage is the text of err safe to show a caller. The cause of an
// ExecutionError is never included.
func PublicMessage(err error) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Error()
	}
	if Code(err) != "" {
		return err.Error()
	}
	return "internal error"
}
