package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"retro-backend/application/commands"
	"retro-backend/domain/config"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	"retro-backend/infrastructure/persistence/memory"
)

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (b *recordingBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evts...)
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.GetEventType()
	}
	return out
}

type staticConfig struct{}

func (staticConfig) DomainConfig() *config.DomainConfig {
	return config.DefaultDomainConfig()
}

// env is a full in-memory handler wiring for one test.
type env struct {
	sessions     *memory.SessionRepository
	participants *memory.ParticipantRepository
	notes        *memory.NoteRepository
	bus          *recordingBus
	logger       *zap.Logger
}

func newEnv() *env {
	store := memory.NewStore()
	return &env{
		sessions:     memory.NewSessionRepository(store),
		participants: memory.NewParticipantRepository(store),
		notes:        memory.NewNoteRepository(store),
		bus:          &recordingBus{},
		logger:       zap.NewNop(),
	}
}

// seedSession persists a session in the given phase with its moderator and
// returns both.
func (e *env) seedSession(t *testing.T, phase valueobjects.Phase) (*entities.Session, *entities.Participant) {
	t.Helper()
	ctx := context.Background()

	code, err := valueobjects.GenerateJoinCode()
	assert.NoError(t, err)
	session, err := entities.NewSession(valueobjects.NewSessionID(), code, valueobjects.NewParticipantID())
	assert.NoError(t, err)
	session.ClearEvents()

	for session.Phase() != phase {
		_, err := session.AdvancePhase(session.ModeratorID())
		assert.NoError(t, err)
	}
	session.ClearEvents()
	assert.NoError(t, e.sessions.Save(ctx, session))

	moderator, err := entities.NewParticipant(session.ModeratorID(), session.ID(), "Moderator", true)
	assert.NoError(t, err)
	moderator.ClearEvents()
	assert.NoError(t, e.participants.Save(ctx, moderator))

	return session, moderator
}

// seedParticipant persists a non-moderator participant.
func (e *env) seedParticipant(t *testing.T, sessionID valueobjects.SessionID, name string) *entities.Participant {
	t.Helper()
	p, err := entities.NewParticipant(valueobjects.NewParticipantID(), sessionID, name, false)
	assert.NoError(t, err)
	p.ClearEvents()
	assert.NoError(t, e.participants.Save(context.Background(), p))
	return p
}

// seedNote persists a note owned by ownerID.
func (e *env) seedNote(t *testing.T, sessionID valueobjects.SessionID, ownerID valueobjects.ParticipantID, body string) *entities.Note {
	t.Helper()
	text, err := valueobjects.NewNoteText(body)
	assert.NoError(t, err)
	pos, err := valueobjects.NewPosition(0, 0)
	assert.NoError(t, err)
	note, err := entities.NewNote(valueobjects.NewNoteID(), sessionID, ownerID, "Owner", valueobjects.CategoryKeep, text, pos, "")
	assert.NoError(t, err)
	note.ClearEvents()
	assert.NoError(t, e.notes.Save(context.Background(), note))
	return note
}

func (e *env) createNoteCommand(session *entities.Session, actorID valueobjects.ParticipantID, text string) commands.CreateNoteCommand {
	return commands.CreateNoteCommand{
		SessionID: session.ID().String(),
		NoteID:    uuid.New().String(),
		ActorID:   actorID.String(),
		Category:  "keep",
		Text:      text,
		X:         10,
		Y:         20,
	}
}
