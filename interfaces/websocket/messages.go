package websocket

import (
	"encoding/json"
	"time"

	"retro-backend/application/realtime"
	"retro-backend/domain/events"
)

// Wire message types sent to clients.
const (
	MessageSnapshot          = "SNAPSHOT"
	MessageSessionCreated    = "SESSION_CREATED"
	MessagePhaseChanged      = "PHASE_CHANGED"
	MessageParticipantJoined = "PARTICIPANT_JOINED"
	MessageCompletionChanged = "COMPLETION_CHANGED"
	MessageNoteCreated       = "NOTE_CREATED"
	MessageNoteUpdated       = "NOTE_UPDATED"
	MessageNoteDeleted       = "NOTE_DELETED"
	MessageNoteRevealed      = "NOTE_REVEALED"
)

var wireTypes = map[string]string{
	events.TypeSessionCreated:               MessageSessionCreated,
	events.TypePhaseChanged:                 MessagePhaseChanged,
	events.TypeParticipantJoined:            MessageParticipantJoined,
	events.TypeParticipantCompletionChanged: MessageCompletionChanged,
	events.TypeNoteCreated:                  MessageNoteCreated,
	events.TypeNoteUpdated:                  MessageNoteUpdated,
	events.TypeNoteDeleted:                  MessageNoteDeleted,
	events.TypeNoteRevealed:                 MessageNoteRevealed,
}

// Envelope is the wire format for every message pushed to a client.
type Envelope struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func encodeSnapshot(snapshot *realtime.Snapshot) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      MessageSnapshot,
		Timestamp: time.Now().UTC(),
		Data:      snapshot,
	})
}

func encodeEvent(event events.DomainEvent) ([]byte, error) {
	wireType, ok := wireTypes[event.GetEventType()]
	if !ok {
		wireType = event.GetEventType()
	}
	return json.Marshal(Envelope{
		Type:      wireType,
		Timestamp: event.GetTimestamp(),
		Data:      event,
	})
}
