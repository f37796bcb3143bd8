package ports

import (
	"context"

	"retro-backend/domain/config"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
)

// SessionRepository defines the interface for session persistence
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation
type SessionRepository interface {
	// Save persists a session (create or update)
	Save(ctx context.Context, session *entities.Session) error

	// GetByID retrieves a session by its ID
	GetByID(ctx context.Context, id valueobjects.SessionID) (*entities.Session, error)

	// GetByJoinCode retrieves a session by join code. Only sessions that
	// have not finished resolve; join codes of finished sessions are free
	// for reuse.
	GetByJoinCode(ctx context.Context, code valueobjects.JoinCode) (*entities.Session, error)
}

// ParticipantRepository defines the interface for participant persistence
type ParticipantRepository interface {
	// Save persists a participant (create or update)
	Save(ctx context.Context, participant *entities.Participant) error

	// GetByID retrieves one participant of a session
	GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.ParticipantID) (*entities.Participant, error)

	// ListBySession retrieves the full roster of a session
	ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Participant, error)
}

// NoteRepository defines the interface for note persistence
type NoteRepository interface {
	// Save persists a note (create or update)
	Save(ctx context.Context, note *entities.Note) error

	// GetByID retrieves one note of a session
	GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) (*entities.Note, error)

	// ListBySession retrieves every note of a session, unfiltered. Callers
	// must filter through the access control engine before exposure.
	ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Note, error)

	// Delete removes a note
	Delete(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) error
}

// EventBus publishes domain events after a mutation has been committed.
// Implementations include the in-process realtime broadcaster and the
// external EventBridge publisher.
type EventBus interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events in order
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// StorePinger reports storage connectivity for readiness checks
type StorePinger interface {
	Ping(ctx context.Context) error
}

// DomainConfigProvider supplies the current domain limits. Implementations
// may reload them at runtime.
type DomainConfigProvider interface {
	DomainConfig() *config.DomainConfig
}
