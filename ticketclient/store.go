package ticketclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// PendingAttempt is the recovery record a client keeps for its most recent
// checkout. It survives restarts so a lost redirect can still be verified.
type PendingAttempt struct {
	GatewaySessionID string `json:"gateway_session_id"`
	MomentID         string `json:"moment_id"`
	TimestampMillis  int64  `json:"timestamp_millis"`
}

// AttemptStore persists at most one pending attempt. Load returns nil when
// nothing is stored.
type AttemptStore interface {
	Load() (*PendingAttempt, error)
	Save(attempt *PendingAttempt) error
	Clear() error
}

// FileAttemptStore keeps the pending attempt as a small JSON file.
type FileAttemptStore struct {
	mu   sync.Mutex
	path string
}

func NewFileAttemptStore(path string) *FileAttemptStore {
	return &FileAttemptStore{path: path}
}

func (s *FileAttemptStore) Load() (*PendingAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending attempt: %w", err)
	}

	var attempt PendingAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		// A corrupt record is unrecoverable, treat it as absent.
		_ = os.Remove(s.path)
		return nil, nil
	}
	if attempt.GatewaySessionID == "" {
		return nil, nil
	}
	return &attempt, nil
}

func (s *FileAttemptStore) Save(attempt *PendingAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode pending attempt: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write pending attempt: %w", err)
	}
	return nil
}

func (s *FileAttemptStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear pending attempt: %w", err)
	}
	return nil
}

// MemoryAttemptStore is an in-process store for tests and short-lived clients.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	attempt *PendingAttempt
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{}
}

func (s *MemoryAttemptStore) Load() (*PendingAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return nil, nil
	}
	copied := *s.attempt
	return &copied, nil
}

func (s *MemoryAttemptStore) Save(attempt *PendingAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *attempt
	s.attempt = &copied
	return nil
}

func (s *MemoryAttemptStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt = nil
	return nil
}
