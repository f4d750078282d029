package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the history log.
type EventType string

const (
	// Platform events
	EventTypePlatformAdded   EventType = "platform.added"
	EventTypePlatformRemoved EventType = "platform.removed"

	// Message type events
	EventTypeMessageTypeAdded   EventType = "message_type.added"
	EventTypeMessageTypeRemoved EventType = "message_type.removed"

	// Template events
	EventTypeTemplateSaved EventType = "template.saved"

	// Message events
	EventTypeMessageGenerated EventType = "message.generated"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypePlatform    EntityType = "platform"
	EntityTypeMessageType EntityType = "message_type"
)

// Event represents an append-only history entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the platform name or "platform/type" key.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// MessageTypeKey builds the entity id used for message type events.
func MessageTypeKey(platform, messageType string) string {
	return platform + "/" + messageType
}

// TemplateSavedPayload is the payload for template.saved events.
type TemplateSavedPayload struct {
	Platform    string   `json:"platform"`
	MessageType string   `json:"message_type"`
	Fields      []string `json:"fields"`
}

// MessageGeneratedPayload is the payload for message.generated events.
type MessageGeneratedPayload struct {
	Platform    string `json:"platform"`
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
}
