package storage

import "sync"

// MemoryStore keeps the snapshot in memory. It backs unit tests and lets
// them inject save failures.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *Snapshot
	saves    int
	saveErr  error
	loadErr  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store pre-seeded with snapshot
func NewMemoryStoreWith(snapshot Snapshot) *MemoryStore {
	c := snapshot.Clone()
	return &MemoryStore{snapshot: &c}
}

func (s *MemoryStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		empty := NewSnapshot()
		s.snapshot = &empty
	}
	return nil
}

func (s *MemoryStore) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return Snapshot{}, s.loadErr
	}
	if s.snapshot == nil {
		return NewSnapshot(), nil
	}
	return s.snapshot.Clone(), nil
}

func (s *MemoryStore) Save(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	c := snapshot.Clone()
	s.snapshot = &c
	s.saves++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return ":memory:"
}

// SetSaveError makes every subsequent Save fail with err (nil clears it)
func (s *MemoryStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// SetLoadError makes Load fail with err (nil clears it)
func (s *MemoryStore) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// Saves returns the number of successful saves
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Snapshot returns a copy of the last saved snapshot
func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return NewSnapshot()
	}
	return s.snapshot.Clone()
}
