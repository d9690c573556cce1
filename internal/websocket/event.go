package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeApproved EventType = "approved"
	EventTypeRejected EventType = "rejected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeRequisition EntityType = "requisition"
	EntityTypeAttachment  EntityType = "attachment"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "requisition.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "requisition"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RequisitionCreated creates a requisition.created event
func RequisitionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeRequisition, payload)
}

// RequisitionApproved creates a requisition.approved event
func RequisitionApproved(payload interface{}) Event {
	return NewEvent(EventTypeApproved, EntityTypeRequisition, payload)
}

// RequisitionRejected creates a requisition.rejected event
func RequisitionRejected(payload interface{}) Event {
	return NewEvent(EventTypeRejected, EntityTypeRequisition, payload)
}

// AttachmentCreated creates an attachment.created event
func AttachmentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAttachment, payload)
}
