package entities

import (
	"time"

	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	pkgerrors "retro-backend/pkg/errors"
)

// Session is the aggregate root for one retrospective instance. It owns the
// phase lifecycle; participants and notes reference it by ID.
type Session struct {
	// Private fields ensure encapsulation
	id             valueobjects.SessionID
	joinCode       valueobjects.JoinCode
	moderatorID    valueobjects.ParticipantID
	phase          valueobjects.Phase
	createdAt      time.Time
	phaseChangedAt time.Time
	version        int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewSession creates a session in the waiting phase. The moderator is fixed
// at creation and never reassigned.
func NewSession(id valueobjects.SessionID, joinCode valueobjects.JoinCode, moderatorID valueobjects.ParticipantID) (*Session, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("session ID cannot be empty")
	}
	if joinCode.IsZero() {
		return nil, pkgerrors.NewValidationError("join code cannot be empty")
	}
	if moderatorID.IsZero() {
		return nil, pkgerrors.NewValidationError("moderator ID cannot be empty")
	}

	now := time.Now().UTC()
	session := &Session{
		id:             id,
		joinCode:       joinCode,
		moderatorID:    moderatorID,
		phase:          valueobjects.PhaseWaiting,
		createdAt:      now,
		phaseChangedAt: now,
		version:        1,
		events:         []events.DomainEvent{},
	}

	session.addEvent(events.NewSessionCreated(id, joinCode, moderatorID, now))

	return session, nil
}

// ReconstructSession reconstructs a session from repository data with
// preserved timestamps
func ReconstructSession(
	id valueobjects.SessionID,
	joinCode valueobjects.JoinCode,
	moderatorID valueobjects.ParticipantID,
	phase valueobjects.Phase,
	createdAt, phaseChangedAt time.Time,
	version int,
) *Session {
	return &Session{
		id:             id,
		joinCode:       joinCode,
		moderatorID:    moderatorID,
		phase:          phase,
		createdAt:      createdAt,
		phaseChangedAt: phaseChangedAt,
		version:        version,
		events:         []events.DomainEvent{},
	}
}

// ID returns the session's unique identifier
func (s *Session) ID() valueobjects.SessionID {
	return s.id
}

// JoinCode returns the session's join code
func (s *Session) JoinCode() valueobjects.JoinCode {
	return s.joinCode
}

// ModeratorID returns the fixed moderator participant ID
func (s *Session) ModeratorID() valueobjects.ParticipantID {
	return s.moderatorID
}

// Phase returns the session's current phase
func (s *Session) Phase() valueobjects.Phase {
	return s.phase
}

// CreatedAt returns the session's creation time
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// PhaseChangedAt returns the time of the last phase transition
func (s *Session) PhaseChangedAt() time.Time {
	return s.phaseChangedAt
}

// Version returns the session's version for optimistic locking
func (s *Session) Version() int {
	return s.version
}

// AdvancePhase moves the session to the next phase in the lifecycle. The
// caller is responsible for the moderator check and the completion gate;
// this method only enforces the transition graph itself.
func (s *Session) AdvancePhase(by valueobjects.ParticipantID) (valueobjects.Phase, error) {
	next, ok := s.phase.Next()
	if !ok {
		return "", pkgerrors.NewInvalidTransitionError("session is already finished")
	}

	old := s.phase
	s.phase = next
	s.phaseChangedAt = time.Now().UTC()
	s.version++

	s.addEvent(events.NewPhaseChanged(s.id, old, next, by, s.phaseChangedAt, s.version))

	return next, nil
}

// DomainEvents returns the events recorded since the last clear
func (s *Session) DomainEvents() []events.DomainEvent {
	return s.events
}

// ClearEvents clears recorded events after they have been published
func (s *Session) ClearEvents() {
	s.events = []events.DomainEvent{}
}

func (s *Session) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}
