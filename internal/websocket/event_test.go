package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":              1,
		"description":     "Notebook",
		"requestedAmount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeRequisition, payload)
	after := time.Now()

	assert.Equal(t, "requisition.created", evt.Type)
	assert.Equal(t, EntityTypeRequisition, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"id":     float64(1),
		"status": "approved",
	}

	evt := Event{
		Type:      "requisition.approved",
		Entity:    EntityTypeRequisition,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "requisition.approved", decoded["type"])
	assert.Equal(t, "requisition", decoded["entity"])
	assert.Equal(t, "2026-03-15T10:30:00Z", decoded["timestamp"])
	decodedPayload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "approved", decodedPayload["status"])
}

func TestRequisitionEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": float64(7)}

	tests := []struct {
		name string
		evt  Event
		want string
	}{
		{"created", RequisitionCreated(payload), "requisition.created"},
		{"approved", RequisitionApproved(payload), "requisition.approved"},
		{"rejected", RequisitionRejected(payload), "requisition.rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.evt.Type)
			assert.Equal(t, EntityTypeRequisition, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}

	att := AttachmentCreated(payload)
	assert.Equal(t, "attachment.created", att.Type)
	assert.Equal(t, EntityTypeAttachment, att.Entity)
}
