package entities

import (
	"time"

	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	pkgerrors "retro-backend/pkg/errors"
)

// Note is a categorized, positioned text unit owned by one participant.
// Ownership never transfers. The owner display name is denormalized for
// rendering only and must never be used for authorization.
type Note struct {
	id        valueobjects.NoteID
	sessionID valueobjects.SessionID
	ownerID   valueobjects.ParticipantID
	ownerName string
	category  valueobjects.Category
	text      valueobjects.NoteText
	position  valueobjects.Position
	groupID   string
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewNote creates a note with full validation
func NewNote(
	id valueobjects.NoteID,
	sessionID valueobjects.SessionID,
	ownerID valueobjects.ParticipantID,
	ownerName string,
	category valueobjects.Category,
	text valueobjects.NoteText,
	position valueobjects.Position,
	groupID string,
) (*Note, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("note ID cannot be empty")
	}
	if sessionID.IsZero() {
		return nil, pkgerrors.NewValidationError("session ID cannot be empty")
	}
	if ownerID.IsZero() {
		return nil, pkgerrors.NewValidationError("owner ID cannot be empty")
	}

	now := time.Now().UTC()
	note := &Note{
		id:        id,
		sessionID: sessionID,
		ownerID:   ownerID,
		ownerName: ownerName,
		category:  category,
		text:      text,
		position:  position,
		groupID:   groupID,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	note.addEvent(events.NewNoteCreated(note.Payload(), note.version))

	return note, nil
}

// ReconstructNote reconstructs a note from repository data with preserved
// timestamps
func ReconstructNote(
	id valueobjects.NoteID,
	sessionID valueobjects.SessionID,
	ownerID valueobjects.ParticipantID,
	ownerName string,
	category valueobjects.Category,
	text valueobjects.NoteText,
	position valueobjects.Position,
	groupID string,
	createdAt, updatedAt time.Time,
	version int,
) *Note {
	return &Note{
		id:        id,
		sessionID: sessionID,
		ownerID:   ownerID,
		ownerName: ownerName,
		category:  category,
		text:      text,
		position:  position,
		groupID:   groupID,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}
}

// ID returns the note's unique identifier
func (n *Note) ID() valueobjects.NoteID {
	return n.id
}

// SessionID returns the session this note belongs to
func (n *Note) SessionID() valueobjects.SessionID {
	return n.sessionID
}

// OwnerID returns the owning participant's ID
func (n *Note) OwnerID() valueobjects.ParticipantID {
	return n.ownerID
}

// OwnerName returns the denormalized owner display name
func (n *Note) OwnerName() string {
	return n.ownerName
}

// Category returns the note's category
func (n *Note) Category() valueobjects.Category {
	return n.category
}

// Text returns the note's text
func (n *Note) Text() valueobjects.NoteText {
	return n.text
}

// Position returns the note's board position
func (n *Note) Position() valueobjects.Position {
	return n.position
}

// GroupID returns the note's visual grouping tag, empty when ungrouped
func (n *Note) GroupID() string {
	return n.groupID
}

// CreatedAt returns the note's creation time
func (n *Note) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns the time of the last mutation
func (n *Note) UpdatedAt() time.Time {
	return n.updatedAt
}

// Version returns the note's version for optimistic locking
func (n *Note) Version() int {
	return n.version
}

// UpdateText replaces the note's text. Returns true when the note changed.
func (n *Note) UpdateText(text valueobjects.NoteText) bool {
	if text.Equals(n.text) {
		return false
	}
	n.text = text
	n.touch()
	return true
}

// ChangeCategory moves the note to another category column
func (n *Note) ChangeCategory(category valueobjects.Category) bool {
	if category == n.category {
		return false
	}
	n.category = category
	n.touch()
	return true
}

// MoveTo moves the note to a new board position
func (n *Note) MoveTo(position valueobjects.Position) bool {
	if position.Equals(n.position) {
		return false
	}
	n.position = position
	n.touch()
	return true
}

// SetGroup sets or clears the note's grouping tag
func (n *Note) SetGroup(groupID string) bool {
	if groupID == n.groupID {
		return false
	}
	n.groupID = groupID
	n.touch()
	return true
}

// RecordUpdated records a single NoteUpdated event covering every field
// change applied since the note was loaded. The coordinator emits exactly
// one change event per accepted command.
func (n *Note) RecordUpdated() {
	n.addEvent(events.NewNoteUpdated(n.Payload(), n.version))
}

// RecordDeleted records the note's removal from the board
func (n *Note) RecordDeleted() {
	n.addEvent(events.NewNoteDeleted(n.id, n.sessionID, n.ownerID, time.Now().UTC(), n.version))
}

// Payload returns the note's full renderable state for events and snapshots
func (n *Note) Payload() events.NotePayload {
	return events.NotePayload{
		ID:        n.id,
		SessionID: n.sessionID,
		OwnerID:   n.ownerID,
		OwnerName: n.ownerName,
		Category:  n.category,
		Text:      n.text,
		Position:  n.position,
		GroupID:   n.groupID,
		CreatedAt: n.createdAt,
		UpdatedAt: n.updatedAt,
	}
}

// DomainEvents returns the events recorded since the last clear
func (n *Note) DomainEvents() []events.DomainEvent {
	return n.events
}

// ClearEvents clears recorded events after they have been published
func (n *Note) ClearEvents() {
	n.events = []events.DomainEvent{}
}

// touch stamps updatedAt, keeping it strictly increasing even when the
// clock does not move between mutations.
func (n *Note) touch() {
	now := time.Now().UTC()
	if !now.After(n.updatedAt) {
		now = n.updatedAt.Add(time.Nanosecond)
	}
	n.updatedAt = now
	n.version++
}

func (n *Note) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
