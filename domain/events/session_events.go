package events

import (
	"time"

	"retro-backend/domain/core/valueobjects"
)

// SessionCreated is raised when a moderator opens a new session
type SessionCreated struct {
	BaseEvent
	JoinCode    valueobjects.JoinCode      `json:"join_code"`
	ModeratorID valueobjects.ParticipantID `json:"moderator_id"`
}

// NewSessionCreated creates a SessionCreated event
func NewSessionCreated(sessionID valueobjects.SessionID, joinCode valueobjects.JoinCode, moderatorID valueobjects.ParticipantID, timestamp time.Time) SessionCreated {
	return SessionCreated{
		BaseEvent: BaseEvent{
			AggregateID: sessionID.String(),
			SessionID:   sessionID.String(),
			EventType:   TypeSessionCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		JoinCode:    joinCode,
		ModeratorID: moderatorID,
	}
}

// PhaseChanged is raised when the moderator advances the session phase
type PhaseChanged struct {
	BaseEvent
	OldPhase  valueobjects.Phase         `json:"old_phase"`
	NewPhase  valueobjects.Phase         `json:"new_phase"`
	ChangedBy valueobjects.ParticipantID `json:"changed_by"`
}

// NewPhaseChanged creates a PhaseChanged event
func NewPhaseChanged(sessionID valueobjects.SessionID, oldPhase, newPhase valueobjects.Phase, changedBy valueobjects.ParticipantID, timestamp time.Time, version int) PhaseChanged {
	return PhaseChanged{
		BaseEvent: BaseEvent{
			AggregateID: sessionID.String(),
			SessionID:   sessionID.String(),
			EventType:   TypePhaseChanged,
			Timestamp:   timestamp,
			Version:     version,
		},
		OldPhase:  oldPhase,
		NewPhase:  newPhase,
		ChangedBy: changedBy,
	}
}

// ParticipantJoined is raised when a participant enters the session
type ParticipantJoined struct {
	BaseEvent
	ParticipantID valueobjects.ParticipantID `json:"participant_id"`
	DisplayName   string                     `json:"display_name"`
	IsModerator   bool                       `json:"is_moderator"`
}

// NewParticipantJoined creates a ParticipantJoined event
func NewParticipantJoined(sessionID valueobjects.SessionID, participantID valueobjects.ParticipantID, displayName string, isModerator bool, timestamp time.Time) ParticipantJoined {
	return ParticipantJoined{
		BaseEvent: BaseEvent{
			AggregateID: participantID.String(),
			SessionID:   sessionID.String(),
			EventType:   TypeParticipantJoined,
			Timestamp:   timestamp,
			Version:     1,
		},
		ParticipantID: participantID,
		DisplayName:   displayName,
		IsModerator:   isModerator,
	}
}

// ParticipantCompletionChanged is raised when a participant toggles their
// completion flag during the private phase
type ParticipantCompletionChanged struct {
	BaseEvent
	ParticipantID valueobjects.ParticipantID `json:"participant_id"`
	Completed     bool                       `json:"completed"`
}

// NewParticipantCompletionChanged creates a ParticipantCompletionChanged event
func NewParticipantCompletionChanged(sessionID valueobjects.SessionID, participantID valueobjects.ParticipantID, completed bool, timestamp time.Time, version int) ParticipantCompletionChanged {
	return ParticipantCompletionChanged{
		BaseEvent: BaseEvent{
			AggregateID: participantID.String(),
			SessionID:   sessionID.String(),
			EventType:   TypeParticipantCompletionChanged,
			Timestamp:   timestamp,
			Version:     version,
		},
		ParticipantID: participantID,
		Completed:     completed,
	}
}
