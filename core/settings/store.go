package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"
)

const (
	// FileName is the config file looked up in the installation root.
	FileName = "renode.config"
	// RootMarker marks the installation root directory.
	RootMarker = ".renode-root"
	// DefaultTerminal is the terminal implementation used when general.terminal is absent.
	DefaultTerminal = "Termsharp"
)

var ErrFrozen = errors.New("settings: store is frozen")

// Store is an INI-backed key/value store.
type Store struct {
	path string

	mu     sync.RWMutex
	file   *ini.File
	frozen bool
}

// Open loads the store from path. A missing file yields an empty store that is
// created on the first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("settings: empty path")
	}
	f, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("settings: load %s: %w", path, err)
	}
	return &Store{path: path, file: f}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value of section.key.
func (s *Store) Get(section, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, err := s.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return "", false
	}
	return sec.Key(key).String(), true
}

// EnsureDefault returns section.key, setting and persisting value first if the
// key is absent.
func (s *Store) EnsureDefault(section, key, value string) (string, error) {
	if v, ok := s.Get(section, key); ok {
		return v, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return "", ErrFrozen
	}
	sec := s.file.Section(section)
	if sec.HasKey(key) {
		return sec.Key(key).String(), nil
	}
	if _, err := sec.NewKey(key, value); err != nil {
		return "", fmt.Errorf("settings: set %s.%s: %w", section, key, err)
	}
	if err := s.save(); err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: ensure dir: %w", err)
	}
	if err := s.file.SaveTo(s.path); err != nil {
		return fmt.Errorf("settings: save %s: %w", s.path, err)
	}
	return nil
}

// Freeze makes the store read-only.
func (s *Store) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// ResolvePath picks the config file: explicit path, then renode.config in the
// installation root found by walking up from startDir, then the per-user file.
func ResolvePath(explicit, startDir, userDir string) string {
	if explicit != "" {
		return explicit
	}
	if root, ok := FindRoot(startDir); ok {
		local := filepath.Join(root, FileName)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}
	return filepath.Join(userDir, "config")
}

// FindRoot walks up from dir looking for the RootMarker file.
func FindRoot(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	dir = filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// UserDir returns the per-user application directory.
func UserDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings: user config dir: %w", err)
	}
	return filepath.Join(base, "renode"), nil
}
