package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Checkpoint is the persisted provider state. Exactly one of its concerns is
// normally populated: a saved account after a completed sign-in, or a pending
// redirect state while an interactive flow is in flight across process runs.
type Checkpoint struct {
	Account      *Account `json:"account,omitempty"`
	PendingState string   `json:"pendingState,omitempty"`
}

// AccountStore persists the active account selection and redirect state to a
// JSON file. It owns all identity persistence; the Provider never writes
// tokens anywhere else.
type AccountStore struct {
	path string
	mu   sync.Mutex
}

// NewAccountStore creates a store backed by the given file path.
func NewAccountStore(path string) *AccountStore {
	return &AccountStore{path: path}
}

// Load reads the current checkpoint. A missing file yields a zero
// Checkpoint, not an error.
func (s *AccountStore) Load() (Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *AccountStore) load() (Checkpoint, error) {
	var cp Checkpoint
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return cp, nil
	}
	if err != nil {
		return cp, fmt.Errorf("failed to read account checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, fmt.Errorf("failed to parse account checkpoint: %w", err)
	}
	return cp, nil
}

func (s *AccountStore) save(cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal account checkpoint: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write account checkpoint: %w", err)
	}
	return nil
}

// SaveAccount persists the account and clears any pending redirect state.
func (s *AccountStore) SaveAccount(acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Checkpoint{Account: acct})
}

// SavePendingState records an in-flight interactive login. The state value
// is validated against the redirect callback on a later run.
func (s *AccountStore) SavePendingState(state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, err := s.load()
	if err != nil {
		cp = Checkpoint{}
	}
	cp.PendingState = state
	return s.save(cp)
}

// Clear removes the checkpoint file.
func (s *AccountStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear account checkpoint: %w", err)
	}
	return nil
}
