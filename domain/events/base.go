package events

import (
	"time"
)

// Event type constants for every event the coordinator can emit, plus the
// reveal event synthesized by the broadcaster.
const (
	TypeSessionCreated               = "session.created"
	TypePhaseChanged                 = "session.phase_changed"
	TypeParticipantJoined            = "participant.joined"
	TypeParticipantCompletionChanged = "participant.completion_changed"
	TypeNoteCreated                  = "note.created"
	TypeNoteUpdated                  = "note.updated"
	TypeNoteDeleted                  = "note.deleted"
	TypeNoteRevealed                 = "note.revealed"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetSessionID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	SessionID   string    `json:"session_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetSessionID() string    { return e.SessionID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }
