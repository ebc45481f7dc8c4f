package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/PheelaV/kr-notebook/internal/fileutil"
	"github.com/PheelaV/kr-notebook/internal/logging"
)

// FileName is the manifest filename inside a lesson directory.
const FileName = "manifest.json"

const lockRetryDelay = 50 * time.Millisecond

// Store owns a lesson's manifest file. Cross-process access is guarded
// by a flock sidecar next to the manifest, in-process access by a
// mutex, and every save goes through an atomic rename.
type Store struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	logger *slog.Logger
}

// NewStore returns a store for the manifest inside lessonDir.
func NewStore(lessonDir string, logger *slog.Logger) *Store {
	path := filepath.Join(lessonDir, FileName)
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

// Path returns the manifest file location.
func (s *Store) Path() string { return s.path }

// Exists reports whether a manifest has been written.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the manifest under the store lock.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	return s.loadLocked()
}

// Save writes the manifest under the store lock.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.saveLocked(m)
}

// Update runs fn against the current manifest and persists the result,
// all under one lock acquisition. An error from fn aborts the
// transaction without writing.
func (s *Store) Update(ctx context.Context, fn func(*Manifest) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	m, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.saveLocked(m)
}

func (s *Store) loadLocked() (*Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", s.path, err)
	}
	m.ensureMaps()
	return &m, nil
}

func (s *Store) saveLocked(m *Manifest) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock manifest: %w", err)
	}
	if !locked {
		return errors.New("lock manifest: not acquired")
	}
	return nil
}

func (s *Store) release() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("release manifest lock", logging.Error(err))
	}
}
