// Package events provides helper functions for recording templar history.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencode-ai/templar/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogPlatformAdded records a new platform.
func LogPlatformAdded(ctx context.Context, repo Repository, platform string) error {
	return create(ctx, repo, models.EventTypePlatformAdded, models.EntityTypePlatform, platform, nil)
}

// LogPlatformRemoved records a removed platform.
func LogPlatformRemoved(ctx context.Context, repo Repository, platform string) error {
	return create(ctx, repo, models.EventTypePlatformRemoved, models.EntityTypePlatform, platform, nil)
}

// LogMessageTypeAdded records a new message type.
func LogMessageTypeAdded(ctx context.Context, repo Repository, platform, messageType string) error {
	return create(ctx, repo, models.EventTypeMessageTypeAdded, models.EntityTypeMessageType,
		models.MessageTypeKey(platform, messageType), nil)
}

// LogMessageTypeRemoved records a removed message type.
func LogMessageTypeRemoved(ctx context.Context, repo Repository, platform, messageType string) error {
	return create(ctx, repo, models.EventTypeMessageTypeRemoved, models.EntityTypeMessageType,
		models.MessageTypeKey(platform, messageType), nil)
}

// LogTemplateSaved records a saved template and its derived fields.
func LogTemplateSaved(ctx context.Context, repo Repository, platform, messageType string, fields []string) error {
	return create(ctx, repo, models.EventTypeTemplateSaved, models.EntityTypeMessageType,
		models.MessageTypeKey(platform, messageType),
		models.TemplateSavedPayload{Platform: platform, MessageType: messageType, Fields: fields})
}

// LogMessageGenerated records a generated message.
func LogMessageGenerated(ctx context.Context, repo Repository, platform, messageType, text string) error {
	return create(ctx, repo, models.EventTypeMessageGenerated, models.EntityTypeMessageType,
		models.MessageTypeKey(platform, messageType),
		models.MessageGeneratedPayload{Platform: platform, MessageType: messageType, Text: text})
}

func create(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if entityID == "" {
		return fmt.Errorf("entity id is required")
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		event.Payload = data
	}

	return repo.Create(ctx, event)
}

// GeneratedMessage decodes the payload of a message.generated event.
func GeneratedMessage(event *models.Event) (models.MessageGeneratedPayload, error) {
	var payload models.MessageGeneratedPayload
	if event == nil || event.Type != models.EventTypeMessageGenerated {
		return payload, fmt.Errorf("not a %s event", models.EventTypeMessageGenerated)
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode payload: %w", err)
	}
	return payload, nil
}

// SavedTemplate decodes the payload of a template.saved event.
func SavedTemplate(event *models.Event) (models.TemplateSavedPayload, error) {
	var payload models.TemplateSavedPayload
	if event == nil || event.Type != models.EventTypeTemplateSaved {
		return payload, fmt.Errorf("not a %s event", models.EventTypeTemplateSaved)
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode payload: %w", err)
	}
	return payload, nil
}
