package ports

import (
	"context"
	"encoding/json"
)

// HookStore persists account-scoped JSON values. Get reports found=false for
// a key that was never set; that is not an error.
type HookStore interface {
	Get(ctx context.Context, key, accountID string) (value json.RawMessage, found bool, err error)
	Set(ctx context.Context, key, accountID string, value json.RawMessage) error
}
