package repo

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const stateFileName = "state.json"

type State struct {
	// Hooks is keyed by account id, then hook key.
	Hooks map[string]map[string]json.RawMessage `json:"hooks"`
}

// Store holds the gateway state. With a data dir every write is flushed to
// <dataDir>/state.json; without one it is memory only.
type Store struct {
	mu        sync.RWMutex
	state     State
	stateFile string
}

func NewMemoryStore() *Store {
	return &Store{state: defaultState()}
}

func NewStore(dataDir string) (*Store, error) {
	dataDir = strings.TrimSpace(dataDir)
	if dataDir == "" {
		return NewMemoryStore(), nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		stateFile: filepath.Join(dataDir, stateFileName),
		state:     defaultState(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func defaultState() State {
	return State{Hooks: map[string]map[string]json.RawMessage{}}
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.stateFile)
	if errors.Is(err, os.ErrNotExist) {
		return s.saveLocked()
	}
	if err != nil {
		return err
	}
	var state State
	if err := json.Unmarshal(b, &state); err != nil {
		return err
	}
	if state.Hooks == nil {
		state.Hooks = map[string]map[string]json.RawMessage{}
	}
	for account, hooks := range state.Hooks {
		if hooks == nil {
			delete(state.Hooks, account)
		}
	}
	s.state = state
	return nil
}

func (s *Store) saveLocked() error {
	if s.stateFile == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.stateFile + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.stateFile)
}

func (s *Store) Read(fn func(state *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Write applies fn and persists the result. State is left as fn modified it
// even when persisting fails.
func (s *Store) Write(fn func(state *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.state); err != nil {
		return err
	}
	return s.saveLocked()
}
