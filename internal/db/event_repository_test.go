package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/templar/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestEventRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	payload, err := json.Marshal(models.MessageGeneratedPayload{Platform: "Correos", MessageType: "Seguimiento", Text: "Hola Ana"})
	require.NoError(t, err)

	event := &models.Event{
		Type:       models.EventTypeMessageGenerated,
		EntityType: models.EntityTypeMessageType,
		EntityID:   models.MessageTypeKey("Correos", "Seguimiento"),
		Payload:    payload,
		Metadata:   map[string]string{"source": "cli"},
	}
	require.NoError(t, repo.Create(ctx, event))
	require.NotEmpty(t, event.ID)
	require.False(t, event.Timestamp.IsZero())

	got, err := repo.Get(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, event.Type, got.Type)
	require.Equal(t, "Correos/Seguimiento", got.EntityID)
	require.JSONEq(t, string(payload), string(got.Payload))
	require.Equal(t, "cli", got.Metadata["source"])
	require.True(t, event.Timestamp.Equal(got.Timestamp))
}

func TestEventRepositoryGetMissing(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrEventNotFound))
}

func TestEventRepositoryRejectsInvalid(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))

	err := repo.Create(context.Background(), &models.Event{Type: models.EventTypePlatformAdded})
	require.Error(t, err)
}

func TestEventRepositoryQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inputs := []struct {
		eventType models.EventType
		entity    string
	}{
		{models.EventTypePlatformAdded, "Tickets"},
		{models.EventTypeMessageGenerated, "Tickets/Anulación"},
		{models.EventTypeMessageGenerated, "Correos/Seguimiento"},
		{models.EventTypeMessageGenerated, "Tickets/Anulación"},
	}
	for i, in := range inputs {
		entityType := models.EntityTypeMessageType
		if in.eventType == models.EventTypePlatformAdded {
			entityType = models.EntityTypePlatform
		}
		require.NoError(t, repo.Create(ctx, &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Type:       in.eventType,
			EntityType: entityType,
			EntityID:   in.entity,
		}))
	}

	generated := models.EventTypeMessageGenerated
	recent, err := repo.Query(ctx, EventQuery{Type: &generated, Limit: 2, Newest: true})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.True(t, recent[0].Timestamp.After(recent[1].Timestamp))
	require.Equal(t, "Tickets/Anulación", recent[0].EntityID)
	require.Equal(t, "Correos/Seguimiento", recent[1].EntityID)

	entity := "Tickets/Anulación"
	byEntity, err := repo.Query(ctx, EventQuery{EntityID: &entity})
	require.NoError(t, err)
	require.Len(t, byEntity, 2)
	require.True(t, byEntity[0].Timestamp.Before(byEntity[1].Timestamp))

	since := base.Add(2 * time.Minute)
	later, err := repo.Query(ctx, EventQuery{Since: &since})
	require.NoError(t, err)
	require.Len(t, later, 2)

	platforms := models.EntityTypePlatform
	byType, err := repo.Query(ctx, EventQuery{EntityType: &platforms})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, "Tickets", byType[0].EntityID)
}
