// Package resilience wraps the storage repositories in a shared circuit
// breaker. When the store is failing, commands fail fast with an
// unavailable error instead of piling up on a sick dependency.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/pkg/errors"
)

// NewBreaker creates the circuit breaker shared by all store decorators.
// Domain errors (not found, conflicts) are outcomes, not store failures,
// and never trip the breaker.
func NewBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "store",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.TypeOf(err) != errors.ErrorTypeInternal
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return zero, errors.NewUnavailableError("store")
		}
		return zero, err
	}
	return result.(T), nil
}

// SessionRepository decorates a ports.SessionRepository with the breaker.
type SessionRepository struct {
	inner ports.SessionRepository
	cb    *gobreaker.CircuitBreaker
}

// NewSessionRepository creates the decorator.
func NewSessionRepository(inner ports.SessionRepository, cb *gobreaker.CircuitBreaker) *SessionRepository {
	return &SessionRepository{inner: inner, cb: cb}
}

// Save persists the session through the breaker.
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	_, err := execute(r.cb, func() (struct{}, error) {
		return struct{}{}, r.inner.Save(ctx, session)
	})
	return err
}

// GetByID retrieves a session through the breaker.
func (r *SessionRepository) GetByID(ctx context.Context, id valueobjects.SessionID) (*entities.Session, error) {
	return execute(r.cb, func() (*entities.Session, error) {
		return r.inner.GetByID(ctx, id)
	})
}

// GetByJoinCode resolves a join code through the breaker.
func (r *SessionRepository) GetByJoinCode(ctx context.Context, code valueobjects.JoinCode) (*entities.Session, error) {
	return execute(r.cb, func() (*entities.Session, error) {
		return r.inner.GetByJoinCode(ctx, code)
	})
}

// ParticipantRepository decorates a ports.ParticipantRepository.
type ParticipantRepository struct {
	inner ports.ParticipantRepository
	cb    *gobreaker.CircuitBreaker
}

// NewParticipantRepository creates the decorator.
func NewParticipantRepository(inner ports.ParticipantRepository, cb *gobreaker.CircuitBreaker) *ParticipantRepository {
	return &ParticipantRepository{inner: inner, cb: cb}
}

// Save persists the participant through the breaker.
func (r *ParticipantRepository) Save(ctx context.Context, participant *entities.Participant) error {
	_, err := execute(r.cb, func() (struct{}, error) {
		return struct{}{}, r.inner.Save(ctx, participant)
	})
	return err
}

// GetByID retrieves one participant through the breaker.
func (r *ParticipantRepository) GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.ParticipantID) (*entities.Participant, error) {
	return execute(r.cb, func() (*entities.Participant, error) {
		return r.inner.GetByID(ctx, sessionID, id)
	})
}

// ListBySession returns the roster through the breaker.
func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Participant, error) {
	return execute(r.cb, func() ([]*entities.Participant, error) {
		return r.inner.ListBySession(ctx, sessionID)
	})
}

// NoteRepository decorates a ports.NoteRepository.
type NoteRepository struct {
	inner ports.NoteRepository
	cb    *gobreaker.CircuitBreaker
}

// NewNoteRepository creates the decorator.
func NewNoteRepository(inner ports.NoteRepository, cb *gobreaker.CircuitBreaker) *NoteRepository {
	return &NoteRepository{inner: inner, cb: cb}
}

// Save persists the note through the breaker.
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note) error {
	_, err := execute(r.cb, func() (struct{}, error) {
		return struct{}{}, r.inner.Save(ctx, note)
	})
	return err
}

// GetByID retrieves one note through the breaker.
func (r *NoteRepository) GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) (*entities.Note, error) {
	return execute(r.cb, func() (*entities.Note, error) {
		return r.inner.GetByID(ctx, sessionID, id)
	})
}

// ListBySession returns the session's notes through the breaker.
func (r *NoteRepository) ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Note, error) {
	return execute(r.cb, func() ([]*entities.Note, error) {
		return r.inner.ListBySession(ctx, sessionID)
	})
}

// Delete removes the note through the breaker.
func (r *NoteRepository) Delete(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) error {
	_, err := execute(r.cb, func() (struct{}, error) {
		return struct{}{}, r.inner.Delete(ctx, sessionID, id)
	})
	return err
}

// Pinger decorates a ports.StorePinger.
type Pinger struct {
	inner ports.StorePinger
	cb    *gobreaker.CircuitBreaker
}

// NewPinger creates the decorator.
func NewPinger(inner ports.StorePinger, cb *gobreaker.CircuitBreaker) *Pinger {
	return &Pinger{inner: inner, cb: cb}
}

// Ping checks the store through the breaker.
func (p *Pinger) Ping(ctx context.Context) error {
	_, err := execute(p.cb, func() (struct{}, error) {
		return struct{}{}, p.inner.Ping(ctx)
	})
	return err
}
