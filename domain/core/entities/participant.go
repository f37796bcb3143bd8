package entities

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"retro-backend/domain/config"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	pkgerrors "retro-backend/pkg/errors"
)

// Participant is a person attached to exactly one session. The moderator
// flag is fixed at creation; the completion flag is only meaningful during
// the private phase.
type Participant struct {
	id          valueobjects.ParticipantID
	sessionID   valueobjects.SessionID
	displayName string
	isModerator bool
	isCompleted bool
	joinedAt    time.Time
	version     int

	events []events.DomainEvent
}

// NewParticipant creates a participant joining a session
func NewParticipant(id valueobjects.ParticipantID, sessionID valueobjects.SessionID, displayName string, isModerator bool) (*Participant, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("participant ID cannot be empty")
	}
	if sessionID.IsZero() {
		return nil, pkgerrors.NewValidationError("session ID cannot be empty")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, pkgerrors.NewValidationError("display name cannot be empty")
	}
	cfg := config.DefaultDomainConfig()
	if utf8.RuneCountInString(displayName) > cfg.MaxDisplayNameLength {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("display name exceeds maximum length of %d characters", cfg.MaxDisplayNameLength))
	}

	now := time.Now().UTC()
	participant := &Participant{
		id:          id,
		sessionID:   sessionID,
		displayName: displayName,
		isModerator: isModerator,
		isCompleted: false,
		joinedAt:    now,
		version:     1,
		events:      []events.DomainEvent{},
	}

	participant.addEvent(events.NewParticipantJoined(sessionID, id, displayName, isModerator, now))

	return participant, nil
}

// ReconstructParticipant reconstructs a participant from repository data
func ReconstructParticipant(
	id valueobjects.ParticipantID,
	sessionID valueobjects.SessionID,
	displayName string,
	isModerator, isCompleted bool,
	joinedAt time.Time,
	version int,
) *Participant {
	return &Participant{
		id:          id,
		sessionID:   sessionID,
		displayName: displayName,
		isModerator: isModerator,
		isCompleted: isCompleted,
		joinedAt:    joinedAt,
		version:     version,
		events:      []events.DomainEvent{},
	}
}

// ID returns the participant's identifier
func (p *Participant) ID() valueobjects.ParticipantID {
	return p.id
}

// SessionID returns the session this participant belongs to
func (p *Participant) SessionID() valueobjects.SessionID {
	return p.sessionID
}

// DisplayName returns the participant's display name
func (p *Participant) DisplayName() string {
	return p.displayName
}

// IsModerator reports whether this participant is the session moderator
func (p *Participant) IsModerator() bool {
	return p.isModerator
}

// IsCompleted reports whether this participant has marked their private
// reflection as complete
func (p *Participant) IsCompleted() bool {
	return p.isCompleted
}

// JoinedAt returns the join timestamp
func (p *Participant) JoinedAt() time.Time {
	return p.joinedAt
}

// Version returns the participant's version for optimistic locking
func (p *Participant) Version() int {
	return p.version
}

// SetCompleted sets the completion flag. Setting the same value twice is
// not an error and records no event.
func (p *Participant) SetCompleted(completed bool) bool {
	if p.isCompleted == completed {
		return false
	}

	p.isCompleted = completed
	p.version++

	p.addEvent(events.NewParticipantCompletionChanged(p.sessionID, p.id, completed, time.Now().UTC(), p.version))

	return true
}

// DomainEvents returns the events recorded since the last clear
func (p *Participant) DomainEvents() []events.DomainEvent {
	return p.events
}

// ClearEvents clears recorded events after they have been published
func (p *Participant) ClearEvents() {
	p.events = []events.DomainEvent{}
}

func (p *Participant) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}
