// Package manager implements the template operations offered to users:
// validated registry mutations, each flushed to the store, plus preview and
// generation of messages.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/opencode-ai/templar/internal/events"
	"github.com/opencode-ai/templar/internal/logging"
	"github.com/opencode-ai/templar/internal/models"
	"github.com/opencode-ai/templar/internal/placeholder"
	"github.com/opencode-ai/templar/internal/registry"
)

// Service errors.
var (
	ErrEmptyPlatform       = errors.New("platform name cannot be empty")
	ErrEmptyMessageType    = errors.New("message type name cannot be empty")
	ErrEmptyTemplate       = errors.New("template text cannot be empty")
	ErrNoPlaceholders      = errors.New("no placeholders detected; use {name} to define fields")
	ErrNoTemplate          = errors.New("message type has no template yet")
	ErrPlatformNotFound    = errors.New("platform not found")
	ErrMessageTypeNotFound = errors.New("message type not found")
	ErrMessageTypeExists   = errors.New("message type already exists")
	ErrNotPersisted        = errors.New("changes were applied but could not be saved")
)

// Saver writes the registry document.
type Saver interface {
	Save(doc registry.Document) error
}

// Service applies user operations to a registry and flushes every change.
type Service struct {
	reg    *registry.Registry
	store  Saver
	events events.Repository
	logger zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEvents records history events to repo.
func WithEvents(repo events.Repository) Option {
	return func(s *Service) {
		s.events = repo
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service over reg, flushing to store.
func New(reg *registry.Registry, store Saver, opts ...Option) *Service {
	s := &Service{
		reg:    reg,
		store:  store,
		logger: logging.Component("manager"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeName trims surrounding whitespace and applies Unicode NFC so that
// visually identical names map to the same key. Case is preserved.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// platformKey maps name to the stored platform key: an exact match first,
// then the normalised name, then a stored key that normalises to the same
// text. Files written by other tools may hold keys with stray whitespace.
func (s *Service) platformKey(name string) string {
	if s.reg.HasPlatform(name) {
		return name
	}
	normalized := NormalizeName(name)
	if normalized == "" || s.reg.HasPlatform(normalized) {
		return normalized
	}
	for _, key := range s.reg.Platforms() {
		if NormalizeName(key) == normalized {
			return key
		}
	}
	return normalized
}

// keys resolves platform and message type to their stored keys.
func (s *Service) keys(platform, messageType string) (string, string) {
	platform = s.platformKey(platform)
	if s.reg.HasMessageType(platform, messageType) {
		return platform, messageType
	}
	normalized := NormalizeName(messageType)
	if normalized == "" || s.reg.HasMessageType(platform, normalized) {
		return platform, normalized
	}
	for _, key := range s.reg.MessageTypes(platform) {
		if NormalizeName(key) == normalized {
			return platform, key
		}
	}
	return platform, normalized
}

// Platforms returns platform names in display order.
func (s *Service) Platforms() []string {
	return s.reg.Platforms()
}

// MessageTypes returns the message types of platform in display order.
func (s *Service) MessageTypes(platform string) []string {
	return s.reg.MessageTypes(s.platformKey(platform))
}

// HasPlatform reports whether name is a known platform.
func (s *Service) HasPlatform(name string) bool {
	return s.reg.HasPlatform(s.platformKey(name))
}

// HasMessageType reports whether platform has messageType.
func (s *Service) HasMessageType(platform, messageType string) bool {
	platform, messageType = s.keys(platform, messageType)
	return s.reg.HasMessageType(platform, messageType)
}

// Document returns the serialized registry.
func (s *Service) Document() registry.Document {
	return s.reg.Serialize()
}

// AddPlatform registers a platform. Adding an existing name is a no-op.
func (s *Service) AddPlatform(ctx context.Context, name string) (string, error) {
	name = s.platformKey(name)
	if name == "" {
		return "", ErrEmptyPlatform
	}
	if s.reg.HasPlatform(name) {
		return name, nil
	}

	s.reg.AddPlatform(name)
	s.logger.Debug().Str("platform", name).Msg("platform added")
	s.record(func(repo events.Repository) error {
		return events.LogPlatformAdded(ctx, repo, name)
	})
	return name, s.flush()
}

// RemovePlatform deletes a platform and its message types. It reports
// whether anything was removed.
func (s *Service) RemovePlatform(ctx context.Context, name string) (bool, error) {
	name = s.platformKey(name)
	if name == "" {
		return false, ErrEmptyPlatform
	}
	if !s.reg.HasPlatform(name) {
		return false, nil
	}

	s.reg.RemovePlatform(name)
	s.logger.Debug().Str("platform", name).Msg("platform removed")
	s.record(func(repo events.Repository) error {
		return events.LogPlatformRemoved(ctx, repo, name)
	})
	return true, s.flush()
}

// AddMessageType creates an empty message type on an existing platform.
// An existing message type is rejected rather than reset.
func (s *Service) AddMessageType(ctx context.Context, platform, messageType string) (string, error) {
	platform, messageType = s.keys(platform, messageType)
	if platform == "" {
		return "", ErrEmptyPlatform
	}
	if messageType == "" {
		return "", ErrEmptyMessageType
	}
	if !s.reg.HasPlatform(platform) {
		return "", fmt.Errorf("%w: %q", ErrPlatformNotFound, platform)
	}
	if s.reg.HasMessageType(platform, messageType) {
		return "", fmt.Errorf("%w: %q", ErrMessageTypeExists, messageType)
	}

	s.reg.AddTemplate(platform, messageType, "", nil)
	s.logger.Debug().Str("platform", platform).Str("message_type", messageType).Msg("message type added")
	s.record(func(repo events.Repository) error {
		return events.LogMessageTypeAdded(ctx, repo, platform, messageType)
	})
	return messageType, s.flush()
}

// RemoveMessageType deletes a message type. Unknown names are a no-op.
func (s *Service) RemoveMessageType(ctx context.Context, platform, messageType string) (bool, error) {
	platform, messageType = s.keys(platform, messageType)
	if !s.reg.HasMessageType(platform, messageType) {
		return false, nil
	}

	s.reg.RemoveMessageType(platform, messageType)
	s.logger.Debug().Str("platform", platform).Str("message_type", messageType).Msg("message type removed")
	s.record(func(repo events.Repository) error {
		return events.LogMessageTypeRemoved(ctx, repo, platform, messageType)
	})
	return true, s.flush()
}

// SaveTemplate replaces the template of an existing message type. Fields are
// always re-derived from text; text without a fillable placeholder, including
// text whose only braces are {{escapes}}, is rejected.
func (s *Service) SaveTemplate(ctx context.Context, platform, messageType, text string) (models.TemplateRecord, error) {
	platform, messageType = s.keys(platform, messageType)
	if err := s.requireMessageType(platform, messageType); err != nil {
		return models.TemplateRecord{}, err
	}
	if strings.TrimSpace(text) == "" {
		return models.TemplateRecord{}, ErrEmptyTemplate
	}

	fields := placeholder.Extract(text)
	if len(placeholder.Names(fields)) == 0 {
		return models.TemplateRecord{}, ErrNoPlaceholders
	}

	s.reg.AddTemplate(platform, messageType, text, fields)
	record, _ := s.reg.Template(platform, messageType)

	s.logger.Debug().
		Str("platform", platform).
		Str("message_type", messageType).
		Strs("fields", fields).
		Msg("template saved")
	s.record(func(repo events.Repository) error {
		return events.LogTemplateSaved(ctx, repo, platform, messageType, fields)
	})
	return record, s.flush()
}

// Template returns the record of platform/type.
func (s *Service) Template(platform, messageType string) (models.TemplateRecord, error) {
	platform, messageType = s.keys(platform, messageType)
	if err := s.requireMessageType(platform, messageType); err != nil {
		return models.TemplateRecord{}, err
	}
	record, _ := s.reg.Template(platform, messageType)
	return record, nil
}

// Fields returns the input fields for platform/type: the record's field list
// with repeats and escaped braces removed.
func (s *Service) Fields(platform, messageType string) ([]string, error) {
	record, err := s.Template(platform, messageType)
	if err != nil {
		return nil, err
	}
	return placeholder.Names(record.Fields), nil
}

// Preview renders platform/type with unfilled fields shown as {name}.
func (s *Service) Preview(platform, messageType string, values map[string]string) (string, error) {
	record, err := s.Template(platform, messageType)
	if err != nil {
		return "", err
	}
	return placeholder.Preview(record.Template, record.Fields, values)
}

// Generate renders the final message; unfilled fields become empty. A
// placeholder missing from the record's field list is reported rather than
// silently emptied.
func (s *Service) Generate(ctx context.Context, platform, messageType string, values map[string]string) (string, error) {
	platform, messageType = s.keys(platform, messageType)
	record, err := s.Template(platform, messageType)
	if err != nil {
		return "", err
	}
	if record.Template == "" {
		return "", ErrNoTemplate
	}

	text, err := placeholder.Generate(record.Template, record.Fields, values)
	if err != nil {
		return "", err
	}

	s.record(func(repo events.Repository) error {
		return events.LogMessageGenerated(ctx, repo, platform, messageType, text)
	})
	return text, nil
}

func (s *Service) requireMessageType(platform, messageType string) error {
	if platform == "" {
		return ErrEmptyPlatform
	}
	if messageType == "" {
		return ErrEmptyMessageType
	}
	if !s.reg.HasPlatform(platform) {
		return fmt.Errorf("%w: %q", ErrPlatformNotFound, platform)
	}
	if !s.reg.HasMessageType(platform, messageType) {
		return fmt.Errorf("%w: %q in %q", ErrMessageTypeNotFound, messageType, platform)
	}
	return nil
}

func (s *Service) flush() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(s.reg.Serialize()); err != nil {
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return nil
}

// record writes a history event when history is enabled. Failures are
// logged and do not fail the operation.
func (s *Service) record(write func(repo events.Repository) error) {
	if s.events == nil {
		return
	}
	if err := write(s.events); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record history event")
	}
}
