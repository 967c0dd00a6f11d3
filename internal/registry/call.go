package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Args is the validated argument record handed to an Implementation.
type Args map[string]any

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Number returns the named argument as float64. ok is false when it is
// absent or not numeric.
func (a Args) Number(name string) (float64, bool) {
	return toFloat(a[name])
}

// Numbers returns the named array argument as float64 values, failing on
// the first element that is not a number.
func (a Args) Numbers(name string) ([]float64, error) {
	items, err := a.Array(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		n, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a number", name, i)
		}
		out = append(out, n)
	}
	return out, nil
}

func (a Args) Array(name string) ([]any, error) {
	switch v := a[name].(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	}
	rv := reflect.ValueOf(a[name])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%s is not an array", name)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

type callerKey struct{}

// WithCaller records the authenticated account id for implementations that
// scope their work per account.
func WithCaller(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, callerKey{}, accountID)
}

func CallerFromContext(ctx context.Context) string {
	accountID, _ := ctx.Value(callerKey{}).(string)
	return accountID
}

type outcome struct {
	value any
	err   error
}

// CallByName resolves, validates and executes a function. Hidden functions
// are callable. Failures come back as *NotFoundError,
// *ArgumentValidationError, *ExecutionError or *TimeoutError.
func (r *Registry) CallByName(ctx context.Context, name string, args map[string]any) (any, error) {
	snap := r.snap.Load()
	entry, ok := snap.entries[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := snap.validateArgs(entry.Schema, args); err != nil {
		return nil, err
	}
	return r.execute(ctx, entry, Args(args))
}

func (r *Registry) execute(ctx context.Context, entry *Entry, args Args) (any, error) {
	name := entry.Schema.Name
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		value, err := entry.Implementation.Invoke(callCtx, args)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			return out.value, nil
		}
		if errors.Is(out.err, context.DeadlineExceeded) && callCtx.Err() != nil {
			return nil, &TimeoutError{Function: name, After: r.timeout}
		}
		return nil, &ExecutionError{Function: name, Cause: out.err}
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Function: name, After: r.timeout}
		}
		return nil, &ExecutionError{Function: name, Cause: callCtx.Err()}
	}
}
