package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/opencode-ai/templar/internal/config"
	"github.com/opencode-ai/templar/internal/db"
	"github.com/opencode-ai/templar/internal/events"
	"github.com/opencode-ai/templar/internal/logging"
	"github.com/opencode-ai/templar/internal/manager"
	"github.com/opencode-ai/templar/internal/store"
	"github.com/opencode-ai/templar/internal/templates"
)

// Event sources recorded in history metadata.
const (
	sourceCLI = "cli"
	sourceTUI = "tui"
)

// session holds what a command needs: the template service and, when
// history is enabled and reachable, the history database.
type session struct {
	service *manager.Service
	history *db.DB
}

// openSession loads the template file (seeding defaults on first use) and
// opens the history database. A history database that cannot be opened is
// logged and skipped.
func openSession() (*session, error) {
	return openSessionAs(sourceCLI)
}

// openSessionAs is openSession with history events tagged as coming from
// source.
func openSessionAs(source string) (*session, error) {
	cfg := GetConfig()
	return openSessionWith(cfg, store.New(cfg.Store.Path), source)
}

func openSessionWith(cfg *config.Config, st *store.Store, source string) (*session, error) {
	projectDir, err := os.Getwd()
	if err != nil {
		projectDir = ""
	}

	reg, err := templates.Initialize(st, projectDir)
	if err != nil {
		return nil, err
	}

	s := &session{}
	var opts []manager.Option
	if history := openHistory(cfg); history != nil {
		s.history = history
		repo := events.WithMetadata(db.NewEventRepository(history), map[string]string{"source": source})
		opts = append(opts, manager.WithEvents(repo))
	}
	s.service = manager.New(reg, st, opts...)
	return s, nil
}

func openHistory(cfg *config.Config) *db.DB {
	if cfg == nil || !cfg.History.Enabled {
		return nil
	}
	database, err := db.Open(cfg.History.Path)
	if err != nil {
		logger := logging.Component("cli")
		logger.Warn().Err(err).Str("path", cfg.History.Path).Msg("history disabled")
		return nil
	}
	return database
}

// Close releases the history database.
func (s *session) Close() error {
	if s == nil || s.history == nil {
		return nil
	}
	return s.history.Close()
}

// absorbNotPersisted turns a failed save into a warning: the change stays
// in effect for this invocation but is not on disk.
func absorbNotPersisted(err error) error {
	if err == nil || !errors.Is(err, manager.ErrNotPersisted) {
		return err
	}
	fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	return nil
}
