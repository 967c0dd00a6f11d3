package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"fnrelay/gateway/internal/repo"
	"fnrelay/gateway/internal/service/ports"
)

var errStoreUnavailable = errors.New("state store is unavailable")

// RepoHookStore serves ports.HookStore from the JSON state file.
type RepoHookStore struct {
	Store *repo.Store
}

var _ ports.HookStore = RepoHookStore{}

func NewRepoHookStore(store *repo.Store) RepoHookStore {
	return RepoHookStore{Store: store}
}

func (s RepoHookStore) Get(_ context.Context, key, accountID string) (json.RawMessage, bool, error) {
	if s.Store == nil {
		return nil, false, errStoreUnavailable
	}
	var (
		value json.RawMessage
		found bool
	)
	s.Store.Read(func(state *repo.State) {
		raw, ok := state.Hooks[accountID][key]
		if !ok {
			return
		}
		value, found = bytes.Clone(raw), true
	})
	return value, found, nil
}

func (s RepoHookStore) Set(_ context.Context, key, accountID string, value json.RawMessage) error {
	if s.Store == nil {
		return errStoreUnavailable
	}
	return s.Store.Write(func(state *repo.State) error {
		hooks, ok := state.Hooks[accountID]
		if !ok {
			hooks = map[string]json.RawMessage{}
			state.Hooks[accountID] = hooks
		}
		hooks[key] = bytes.Clone(value)
		return nil
	})
}
