package settings

import (
	"os"
	"sync"
)

// Source is a read-only named-value source such as the process environment.
type Source interface {
	// Lookup returns the value and whether the name is defined
	Lookup(name string) (string, bool)
}

// Store is the process-local override store. Every capability resolved in
// this process is written back here so later readers see one source of truth.
//
// Concurrent sessions writing different values for the same name race and the
// last writer wins.
type Store interface {
	// Get returns the value and whether the name is defined
	Get(name string) (string, bool)

	// Set defines name, replacing any previous value
	Set(name, value string)
}

// EnvSource reads the process environment.
type EnvSource struct{}

// Lookup implements Source using os.LookupEnv.
func (EnvSource) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapSource is a fixed Source, mostly useful in tests.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates a store seeded with a copy of initial.
func NewMemoryStore(initial map[string]string) *MemoryStore {
	data := make(map[string]string, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &MemoryStore{data: data}
}

// Get implements Store.
func (s *MemoryStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Set implements Store.
func (s *MemoryStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = value
}

// Snapshot returns a copy of every defined setting.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
