package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore is a Store persisted as a YAML file. It lets one process hand its
// materialized settings to another, e.g. a resolve step feeding a test run.
type FileStore struct {
	path    string
	data    map[string]string
	mu      sync.RWMutex
	version string
}

type fileContents struct {
	Version  string            `yaml:"version"`
	Settings map[string]string `yaml:"settings"`
}

// NewFileStore creates a file-backed store.
// If path is empty, defaults to ~/.gridrunner/settings.yaml
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".gridrunner", "settings.yaml")
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]string),
		version: "1.0",
	}

	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
	}

	return store, nil
}

// Load replaces the in-memory settings with the file contents.
// A missing file yields an empty store.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]string)
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var contents fileContents
	if err := yaml.Unmarshal(raw, &contents); err != nil {
		return fmt.Errorf("failed to decode settings file: %w", err)
	}

	if contents.Version != "" {
		s.version = contents.Version
	}
	if contents.Settings != nil {
		s.data = contents.Settings
	} else {
		s.data = make(map[string]string)
	}
	return nil
}

// Save writes the settings to disk atomically.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	out, err := yaml.Marshal(fileContents{Version: s.version, Settings: s.data})
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp settings file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Get implements Store.
func (s *FileStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Set implements Store. Changes are kept in memory until Save.
func (s *FileStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = value
}

// Merge copies every entry of values into the store.
func (s *FileStore) Merge(values map[string]string) {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		s.Set(k, values[k])
	}
}

// Snapshot returns a copy of every stored setting.
func (s *FileStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}
