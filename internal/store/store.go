// Package store persists a template registry as a single JSON document.
package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/opencode-ai/templar/internal/logging"
	"github.com/opencode-ai/templar/internal/registry"
)

const fileMode fs.FileMode = 0o644

// Store reads and writes the template document at a fixed path.
// It assumes a single writer; there is no locking.
type Store struct {
	fs     afero.Fs
	path   string
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store for path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		fs:     afero.NewOsFs(),
		path:   path,
		logger: logging.Component("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Save overwrites the document with doc. The content is written to a
// temporary file next to the target and renamed over it. Failures are
// logged and returned; the caller decides whether to surface them.
func (s *Store) Save(doc registry.Document) error {
	if err := s.save(doc); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to save templates")
		return err
	}
	s.logger.Debug().Str("path", s.path).Int("platforms", len(doc)).Msg("templates saved")
	return nil
}

func (s *Store) save(doc registry.Document) error {
	data, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	// TempFile creates 0600; keep the mode of the file being replaced.
	mode := fileMode
	if info, err := s.fs.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := s.fs.Chmod(tmpName, mode); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Load reads the document. A missing file is the first-run case and yields
// an empty document. An unreadable or corrupt file is logged and also
// yields an empty document.
func (s *Store) Load() registry.Document {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("path", s.path).Msg("no saved templates")
			return registry.Document{}
		}
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to read templates")
		return registry.Document{}
	}

	var doc registry.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to parse templates")
		return registry.Document{}
	}
	if doc == nil {
		doc = registry.Document{}
	}
	return doc
}
