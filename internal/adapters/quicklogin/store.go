// Package quicklogin provides process-local and file-backed stores for the
// quick-login override flags.
package quicklogin

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

var (
	_ ports.OverrideStore = (*MemoryStore)(nil)
	_ ports.OverrideStore = (*FileStore)(nil)
)

// MemoryStore keeps overrides in process memory, keyed by client id.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]domainauth.QuickLoginOverride
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]domainauth.QuickLoginOverride)}
}

func (s *MemoryStore) Load(clientID string) domainauth.QuickLoginOverride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[clientID]
}

func (s *MemoryStore) Save(clientID string, o domainauth.QuickLoginOverride) error {
	if clientID == "" {
		return ports.ErrOverrideClientRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	setOverride(s.m, clientID, o)
	return nil
}

// overrideFile is the on-disk document: one entry per quick-login client.
type overrideFile map[string]domainauth.QuickLoginOverride

// FileStore persists overrides as a small YAML document keyed by client id:
//
//	3f0c9a6e-1d2b-4c55-9b7e-0a1d2e3f4a5b:
//	  isSuperAdmin: true
//	  isAdmin: false
//
// The admin CLI and the server share the file so an operator can flip a
// client's flags without a restart.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore returns a store backed by path. The file need not exist yet.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("quick login file path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger.With("component", "override_store", "backend", "file"),
	}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the client's entry. A missing or unreadable file yields the zero override.
func (s *FileStore) Load(clientID string) domainauth.QuickLoginOverride {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		s.logger.Warn("load quick login override failed", "path", s.path, "error", err)
		return domainauth.QuickLoginOverride{}
	}
	return doc[clientID]
}

// Save updates the client's entry and replaces the file atomically. A corrupt
// file is rewritten from scratch.
func (s *FileStore) Save(clientID string, o domainauth.QuickLoginOverride) error {
	if clientID == "" {
		return ports.ErrOverrideClientRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		s.logger.Warn("discarding unreadable quick login file", "path", s.path, "error", err)
		doc = overrideFile{}
	}
	setOverride(doc, clientID, o)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal override: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".quick-login-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write override: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace override file: %w", err)
	}
	return nil
}

func (s *FileStore) read() (overrideFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return overrideFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := overrideFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return doc, nil
}

// setOverride stores o under clientID; the zero override removes the entry.
func setOverride(m map[string]domainauth.QuickLoginOverride, clientID string, o domainauth.QuickLoginOverride) {
	if !o.Active() {
		delete(m, clientID)
		return
	}
	m[clientID] = o
}
