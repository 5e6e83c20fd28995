// Package store persists a library to a single file on disk, crash-safely.
//
// Saves are atomic: output is written to a temporary file in the target
// directory, synced, and renamed into place, so a crash or concurrent
// reader can never observe a half-written library file. Loads recover
// locally from every failure mode: a missing or unreadable file restores an
// empty library, and an undecodable file is copied aside to a
// "<path>.not-valid" quarantine file for forensic recovery before the
// library is treated as empty.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Iron-Ham/medley/internal/errors"
	"github.com/Iron-Ham/medley/internal/library"
	"github.com/Iron-Ham/medley/internal/logging"
)

// QuarantineSuffix is appended to the library path when corrupt data is
// set aside on load.
const QuarantineSuffix = ".not-valid"

// Codec converts between a sequence of items and the persisted byte form.
// Implementations must wrap errors.ErrCorruptData when Decode fails on
// structurally invalid input, so the store can distinguish corruption
// (quarantine) from plain I/O failure.
type Codec interface {
	Encode(items []library.Item) ([]byte, error)
	Decode(data []byte) ([]library.Item, error)
}

// Store persists one library to one file. It is safe for concurrent use;
// a periodic background save racing a shutdown save serializes on the
// store's lock.
type Store struct {
	path  string
	codec Codec
	log   *logging.Logger
	mu    sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store for the library file at path.
func New(path string, codec Codec, opts ...Option) *Store {
	s := &Store{
		path:  path,
		codec: codec,
		log:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the store's target file path.
func (s *Store) Path() string { return s.path }

// Load restores a library from disk via bulk ingestion (no events fire).
// Every failure is recovered locally and reported through logs:
//   - missing or unreadable file: the library stays empty
//   - undecodable data: the raw file is quarantined at <path>.not-valid
//     (best-effort) and the library stays empty
//
// Returns the number of items restored.
func (s *Store) Load(lib *library.Library) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("no library file, starting empty", "path", s.path)
		} else {
			s.log.Warn("library file unreadable, starting empty", "path", s.path, "error", err)
		}
		return 0, nil
	}

	items, err := s.codec.Decode(data)
	if err != nil {
		s.quarantine(data, err)
		return 0, nil
	}

	n := lib.Load(items...)
	s.log.Debug("library restored", "path", s.path, "items", n)
	return n, nil
}

// quarantine copies undecodable raw bytes aside so they survive the next
// save. A failed quarantine is only logged; it must not escalate a
// recovered load into a failure.
func (s *Store) quarantine(data []byte, cause error) {
	qpath := s.path + QuarantineSuffix
	if err := os.WriteFile(qpath, data, 0644); err != nil {
		s.log.Error("failed to quarantine corrupt library file",
			"path", s.path, "quarantine", qpath, "error", err)
	} else {
		s.log.Warn("corrupt library file quarantined",
			"path", s.path, "quarantine", qpath, "error", cause)
	}
}

// Save atomically writes the library's full content to the store's path and
// clears the dirty flag on success. On any failure — encoding or I/O — the
// attempt is abandoned: the previously-saved file is untouched, the dirty
// flag stays set so a later periodic or shutdown save retries, and the
// error is returned for the caller to log.
func (s *Store) Save(lib *library.Library) error {
	return s.SaveTo(lib, s.path)
}

// SaveTo saves to an alternate path with the same guarantees as Save. The
// store's default target is unchanged for future loads and saves.
func (s *Store) SaveTo(lib *library.Library, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.codec.Encode(lib.Content())
	if err != nil {
		s.log.Error("library encode failed, save abandoned", "path", path, "error", err)
		return errors.NewStoreError("encode failed", err).WithPath(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.log.Error("failed to create library directory", "path", path, "error", err)
		return errors.NewStoreError("mkdir failed", err).WithPath(path)
	}

	if err := atomicWriteFile(path, data, 0644); err != nil {
		s.log.Error("library write failed, save abandoned", "path", path, "error", err)
		return errors.NewStoreError("write failed", err).WithPath(path)
	}

	lib.MarkClean()
	s.log.Debug("library saved", "path", path, "bytes", len(data))
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temporary
// file first, then renaming. This ensures the target file is never in a
// partially-written state.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Create temp file in same directory to ensure atomic rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Sync to disk
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
