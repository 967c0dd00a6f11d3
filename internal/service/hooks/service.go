package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fnrelay/gateway/internal/domain"
	"fnrelay/gateway/internal/service/ports"
)

var ErrStoreUnavailable = errors.New("store_error")

const (
	CodeInvalidHookKey   = "invalid_hook_key"
	CodeInvalidHookValue = "invalid_hook_value"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// StoreError wraps a backend failure. Its message is safe to return to
// callers; the cause is only for logs.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return "hook store " + e.Op + " failed"
}

func (e *StoreError) Unwrap() error { return e.Cause }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

type Dependencies struct {
	Store ports.HookStore
}

type Service struct {
	deps Dependencies
}

func NewService(deps Dependencies) *Service {
	return &Service{deps: deps}
}

var nullValue = json.RawMessage("null")

// Get returns the hook for the calling account. An unset key yields a JSON
// null value, not an error.
func (s *Service) Get(ctx context.Context, accountID, key string) (domain.Hook, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return domain.Hook{}, err
	}
	if s.deps.Store == nil {
		return domain.Hook{}, &StoreError{Op: "get", Cause: errors.New("hook store is unavailable")}
	}
	value, found, err := s.deps.Store.Get(ctx, key, accountID)
	if err != nil {
		return domain.Hook{}, &StoreError{Op: "get", Cause: err}
	}
	if !found || len(bytes.TrimSpace(value)) == 0 {
		value = nullValue
	}
	return domain.Hook{Key: key, Value: value}, nil
}

func (s *Service) Set(ctx context.Context, accountID, key string, value json.RawMessage) (domain.Hook, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return domain.Hook{}, err
	}
	value, err = normalizeValue(value)
	if err != nil {
		return domain.Hook{}, err
	}
	if s.deps.Store == nil {
		return domain.Hook{}, &StoreError{Op: "set", Cause: errors.New("hook store is unavailable")}
	}
	if err := s.deps.Store.Set(ctx, key, accountID, value); err != nil {
		return domain.Hook{}, &StoreError{Op: "set", Cause: err}
	}
	return domain.Hook{Key: key, Value: value}, nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", &ValidationError{Code: CodeInvalidHookKey, Message: "hook key is required"}
	}
	if len(key) > domain.MaxHookKeyBytes {
		return "", &ValidationError{
			Code:    CodeInvalidHookKey,
			Message: fmt.Sprintf("hook key must be at most %d bytes", domain.MaxHookKeyBytes),
		}
	}
	return key, nil
}

// normalizeValue compacts value; a missing value is stored as null.
func normalizeValue(value json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nullValue, nil
	}
	if !json.Valid(trimmed) {
		return nil, &ValidationError{Code: CodeInvalidHookValue, Message: "hook value must be valid JSON"}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, &ValidationError{Code: CodeInvalidHookValue, Message: "hook value must be valid JSON"}
	}
	return json.RawMessage(buf.Bytes()), nil
}
