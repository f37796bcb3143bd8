// Package memory provides in-memory repository implementations backed by
// maps. Used by tests and local development; the DynamoDB implementations
// are the production path.
package memory

import (
	"context"
	"sort"
	"sync"

	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/pkg/errors"
)

// Store is the shared backing state for the in-memory repositories. All
// repositories created from one Store observe the same data.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*entities.Session
	participants map[string]map[string]*entities.Participant
	notes        map[string]map[string]*entities.Note
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]*entities.Session),
		participants: make(map[string]map[string]*entities.Participant),
		notes:        make(map[string]map[string]*entities.Note),
	}
}

// Ping implements ports.StorePinger. The in-memory store is always up.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Entities are stored and returned as copies so callers can never mutate
// persisted state without going through Save.

func copySession(src *entities.Session) *entities.Session {
	return entities.ReconstructSession(
		src.ID(), src.JoinCode(), src.ModeratorID(), src.Phase(),
		src.CreatedAt(), src.PhaseChangedAt(), src.Version(),
	)
}

func copyParticipant(src *entities.Participant) *entities.Participant {
	return entities.ReconstructParticipant(
		src.ID(), src.SessionID(), src.DisplayName(),
		src.IsModerator(), src.IsCompleted(), src.JoinedAt(), src.Version(),
	)
}

func copyNote(src *entities.Note) *entities.Note {
	return entities.ReconstructNote(
		src.ID(), src.SessionID(), src.OwnerID(), src.OwnerName(),
		src.Category(), src.Text(), src.Position(), src.GroupID(),
		src.CreatedAt(), src.UpdatedAt(), src.Version(),
	)
}

// SessionRepository implements ports.SessionRepository.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a session repository over the store.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Save persists the session.
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.sessions[session.ID().String()] = copySession(session)
	return nil
}

// GetByID retrieves a session by its identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id valueobjects.SessionID) (*entities.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	session, ok := r.store.sessions[id.String()]
	if !ok {
		return nil, errors.NewNotFoundError("session")
	}
	return copySession(session), nil
}

// GetByJoinCode resolves a join code against sessions that have not
// finished. Codes of finished sessions no longer resolve.
func (r *SessionRepository) GetByJoinCode(ctx context.Context, code valueobjects.JoinCode) (*entities.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, session := range r.store.sessions {
		if session.Phase().IsTerminal() {
			continue
		}
		if session.JoinCode().Equals(code) {
			return copySession(session), nil
		}
	}
	return nil, errors.NewNotFoundError("session")
}

// ParticipantRepository implements ports.ParticipantRepository.
type ParticipantRepository struct {
	store *Store
}

// NewParticipantRepository creates a participant repository over the store.
func NewParticipantRepository(store *Store) *ParticipantRepository {
	return &ParticipantRepository{store: store}
}

// Save persists the participant.
func (r *ParticipantRepository) Save(ctx context.Context, participant *entities.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sessionKey := participant.SessionID().String()
	if _, ok := r.store.participants[sessionKey]; !ok {
		r.store.participants[sessionKey] = make(map[string]*entities.Participant)
	}
	r.store.participants[sessionKey][participant.ID().String()] = copyParticipant(participant)
	return nil
}

// GetByID retrieves one participant of a session.
func (r *ParticipantRepository) GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.ParticipantID) (*entities.Participant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	participant, ok := r.store.participants[sessionID.String()][id.String()]
	if !ok {
		return nil, errors.NewNotFoundError("participant")
	}
	return copyParticipant(participant), nil
}

// ListBySession returns the roster ordered by join time.
func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Participant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	members := r.store.participants[sessionID.String()]
	result := make([]*entities.Participant, 0, len(members))
	for _, p := range members {
		result = append(result, copyParticipant(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].JoinedAt().Equal(result[j].JoinedAt()) {
			return result[i].JoinedAt().Before(result[j].JoinedAt())
		}
		return result[i].ID().String() < result[j].ID().String()
	})
	return result, nil
}

// NoteRepository implements ports.NoteRepository.
type NoteRepository struct {
	store *Store
}

// NewNoteRepository creates a note repository over the store.
func NewNoteRepository(store *Store) *NoteRepository {
	return &NoteRepository{store: store}
}

// Save persists the note.
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sessionKey := note.SessionID().String()
	if _, ok := r.store.notes[sessionKey]; !ok {
		r.store.notes[sessionKey] = make(map[string]*entities.Note)
	}
	r.store.notes[sessionKey][note.ID().String()] = copyNote(note)
	return nil
}

// GetByID retrieves one note of a session.
func (r *NoteRepository) GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) (*entities.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	note, ok := r.store.notes[sessionID.String()][id.String()]
	if !ok {
		return nil, errors.NewNotFoundError("note")
	}
	return copyNote(note), nil
}

// ListBySession returns every note of the session ordered by creation
// time. Callers filter through the access control engine.
func (r *NoteRepository) ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	notes := r.store.notes[sessionID.String()]
	result := make([]*entities.Note, 0, len(notes))
	for _, n := range notes {
		result = append(result, copyNote(n))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].CreatedAt().Before(result[j].CreatedAt())
		}
		return result[i].ID().String() < result[j].ID().String()
	})
	return result, nil
}

// Delete removes the note.
func (r *NoteRepository) Delete(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.notes[sessionID.String()][id.String()]; !ok {
		return errors.NewNotFoundError("note")
	}
	delete(r.store.notes[sessionID.String()], id.String())
	return nil
}
