package amqp

import (
	"encoding/json"

	"despesas/internal/core"
)

// EventMessage is the JSON body of a published snapshot event.
type EventMessage struct {
	core.SnapshotEvent
}

// NewEventMessage wraps e for publishing.
func NewEventMessage(e core.SnapshotEvent) *EventMessage {
	return &EventMessage{SnapshotEvent: e}
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON decodes a message body.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
