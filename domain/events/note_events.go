package events

import (
	"time"

	"retro-backend/domain/core/valueobjects"
)

// NotePayload is the full renderable state of a note as carried on note
// events and snapshots. OwnerName is denormalized for rendering only, never
// for authorization.
type NotePayload struct {
	ID        valueobjects.NoteID        `json:"id"`
	SessionID valueobjects.SessionID     `json:"session_id"`
	OwnerID   valueobjects.ParticipantID `json:"owner_id"`
	OwnerName string                     `json:"owner_name"`
	Category  valueobjects.Category      `json:"category"`
	Text      valueobjects.NoteText      `json:"text"`
	Position  valueobjects.Position      `json:"position"`
	GroupID   string                     `json:"group_id,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NoteCreated is raised when a new note is created
type NoteCreated struct {
	BaseEvent
	Note NotePayload `json:"note"`
}

// NewNoteCreated creates a NoteCreated event
func NewNoteCreated(note NotePayload, version int) NoteCreated {
	return NoteCreated{
		BaseEvent: BaseEvent{
			AggregateID: note.ID.String(),
			SessionID:   note.SessionID.String(),
			EventType:   TypeNoteCreated,
			Timestamp:   note.CreatedAt,
			Version:     version,
		},
		Note: note,
	}
}

// NoteUpdated is raised when any mutable field of a note changes (text,
// category, position, group)
type NoteUpdated struct {
	BaseEvent
	Note NotePayload `json:"note"`
}

// NewNoteUpdated creates a NoteUpdated event
func NewNoteUpdated(note NotePayload, version int) NoteUpdated {
	return NoteUpdated{
		BaseEvent: BaseEvent{
			AggregateID: note.ID.String(),
			SessionID:   note.SessionID.String(),
			EventType:   TypeNoteUpdated,
			Timestamp:   note.UpdatedAt,
			Version:     version,
		},
		Note: note,
	}
}

// NoteDeleted is raised when a note is removed from the board
type NoteDeleted struct {
	BaseEvent
	NoteID  valueobjects.NoteID        `json:"note_id"`
	OwnerID valueobjects.ParticipantID `json:"owner_id"`
}

// NewNoteDeleted creates a NoteDeleted event
func NewNoteDeleted(noteID valueobjects.NoteID, sessionID valueobjects.SessionID, ownerID valueobjects.ParticipantID, timestamp time.Time, version int) NoteDeleted {
	return NoteDeleted{
		BaseEvent: BaseEvent{
			AggregateID: noteID.String(),
			SessionID:   sessionID.String(),
			EventType:   TypeNoteDeleted,
			Timestamp:   timestamp,
			Version:     version,
		},
		NoteID:  noteID,
		OwnerID: ownerID,
	}
}

// NoteRevealed is synthesized by the broadcaster, per subscriber, when a
// phase transition makes a previously hidden note visible. It never
// originates from the coordinator's event sequence.
type NoteRevealed struct {
	BaseEvent
	Note NotePayload `json:"note"`
}

// NewNoteRevealed creates a NoteRevealed event
func NewNoteRevealed(note NotePayload, timestamp time.Time) NoteRevealed {
	return NoteRevealed{
		BaseEvent: BaseEvent{
			AggregateID: note.ID.String(),
			SessionID:   note.SessionID.String(),
			EventType:   TypeNoteRevealed,
			Timestamp:   timestamp,
			Version:     1,
		},
		Note: note,
	}
}
