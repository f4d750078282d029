package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/templar/internal/config"
	"github.com/opencode-ai/templar/internal/db"
	"github.com/opencode-ai/templar/internal/models"
	"github.com/opencode-ai/templar/internal/store"
)

func TestBuildHistoryQuery(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		args       []string
		eventType  string
		since      string
		entityType models.EntityType
		entityID   string
		wantSince  time.Time
		wantErr    bool
	}{
		{name: "no filters"},
		{name: "platform", args: []string{" Tickets "}, entityType: models.EntityTypePlatform, entityID: "Tickets"},
		{name: "message type", args: []string{"Tickets", "Anulación"}, entityType: models.EntityTypeMessageType, entityID: "Tickets/Anulación"},
		{name: "event type", eventType: "message.generated"},
		{name: "since duration", since: "90m", wantSince: now.Add(-90 * time.Minute)},
		{name: "since days", since: "2d", wantSince: now.Add(-48 * time.Hour)},
		{name: "since date", since: "2026-03-01", wantSince: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "since rfc3339", since: "2026-03-09T08:30:00+02:00", wantSince: time.Date(2026, 3, 9, 6, 30, 0, 0, time.UTC)},
		{name: "since negative", since: "-1h", wantErr: true},
		{name: "since garbage", since: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := buildHistoryQuery(tt.args, tt.eventType, tt.since, 5, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 5, query.Limit)
			require.True(t, query.Newest)

			if tt.eventType == "" {
				require.Nil(t, query.Type)
			} else {
				require.Equal(t, models.EventType(tt.eventType), *query.Type)
			}

			if tt.entityID == "" {
				require.Nil(t, query.EntityType)
				require.Nil(t, query.EntityID)
			} else {
				require.Equal(t, tt.entityType, *query.EntityType)
				require.Equal(t, tt.entityID, *query.EntityID)
			}

			if tt.wantSince.IsZero() {
				require.Nil(t, query.Since)
			} else {
				require.True(t, tt.wantSince.Equal(*query.Since), "since = %v", *query.Since)
			}
		})
	}
}

func newHistorySession(t *testing.T) *session {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg := config.Default()
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	st := store.New("templates_data.json", store.WithFs(afero.NewMemMapFs()))
	sess, err := openSessionWith(cfg, st, sourceTUI)
	require.NoError(t, err)
	require.NotNil(t, sess.history)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestHistoryFiltersAndSource(t *testing.T) {
	setFlags(t, false, false)
	ctx := context.Background()
	sess := newHistorySession(t)

	_, err := sess.service.AddPlatform(ctx, "Chat")
	require.NoError(t, err)
	_, err = sess.service.Generate(ctx, "Tickets", "Anulación", map[string]string{"remitente": "Ana"})
	require.NoError(t, err)
	_, err = sess.service.Generate(ctx, "Correos", "Seguimiento", nil)
	require.NoError(t, err)

	repo := db.NewEventRepository(sess.history)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{"Correos/Seguimiento", "Tickets/Anulación", "Chat"}},
		{"platform", []string{"Chat"}, []string{"Chat"}},
		{"message type", []string{"Tickets", "Anulación"}, []string{"Tickets/Anulación"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := buildHistoryQuery(tt.args, "", "1h", 10, time.Now())
			require.NoError(t, err)
			list, err := repo.Query(ctx, query)
			require.NoError(t, err)

			ids := make([]string, 0, len(list))
			for _, event := range list {
				ids = append(ids, event.EntityID)
				require.Equal(t, sourceTUI, event.Metadata["source"])
			}
			require.Equal(t, tt.want, ids)
		})
	}

	list, err := repo.Query(ctx, db.EventQuery{Limit: 1, Newest: true})
	require.NoError(t, err)
	require.Len(t, list, 1)

	var out bytes.Buffer
	require.NoError(t, writeHistory(&out, list))
	require.Contains(t, out.String(), list[0].ID)
	require.Contains(t, out.String(), "SOURCE")
	require.Contains(t, out.String(), sourceTUI)

	event, err := repo.Get(ctx, list[0].ID)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, writeHistoryEvent(&out, event))
	require.Contains(t, out.String(), "source:  tui")
	require.Contains(t, out.String(), "Correos/Seguimiento")
	require.Contains(t, out.String(), "Asunto: Seguimiento")
}

func TestOpenHistoryUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	tests := []struct {
		name    string
		enabled bool
		path    string
	}{
		{"disabled", false, filepath.Join(t.TempDir(), "history.db")},
		{"unopenable path", true, filepath.Join(blocker, "nested", "history.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.History.Enabled = tt.enabled
			cfg.History.Path = tt.path
			require.Nil(t, openHistory(cfg))
		})
	}
	require.Nil(t, openHistory(nil))
}
