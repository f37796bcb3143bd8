package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"retro-backend/application/queries"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/infrastructure/persistence/memory"
	pkgerrors "retro-backend/pkg/errors"
)

type queryEnv struct {
	sessions     *memory.SessionRepository
	participants *memory.ParticipantRepository
	notes        *memory.NoteRepository
	logger       *zap.Logger
	session      *entities.Session
	moderator    *entities.Participant
	robin        *entities.Participant
}

func newQueryEnv(t *testing.T, phase valueobjects.Phase) *queryEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	e := &queryEnv{
		sessions:     memory.NewSessionRepository(store),
		participants: memory.NewParticipantRepository(store),
		notes:        memory.NewNoteRepository(store),
		logger:       zap.NewNop(),
	}

	code, err := valueobjects.ParseJoinCode("ABCDEF")
	assert.NoError(t, err)
	session, err := entities.NewSession(valueobjects.NewSessionID(), code, valueobjects.NewParticipantID())
	assert.NoError(t, err)
	for session.Phase() != phase {
		_, err := session.AdvancePhase(session.ModeratorID())
		assert.NoError(t, err)
	}
	session.ClearEvents()
	assert.NoError(t, e.sessions.Save(ctx, session))
	e.session = session

	e.moderator, err = entities.NewParticipant(session.ModeratorID(), session.ID(), "Moderator", true)
	assert.NoError(t, err)
	assert.NoError(t, e.participants.Save(ctx, e.moderator))

	e.robin, err = entities.NewParticipant(valueobjects.NewParticipantID(), session.ID(), "Robin", false)
	assert.NoError(t, err)
	assert.NoError(t, e.participants.Save(ctx, e.robin))

	return e
}

func (e *queryEnv) addNote(t *testing.T, ownerID valueobjects.ParticipantID, body string) *entities.Note {
	t.Helper()
	text, err := valueobjects.NewNoteText(body)
	assert.NoError(t, err)
	pos, err := valueobjects.NewPosition(0, 0)
	assert.NoError(t, err)
	note, err := entities.NewNote(valueobjects.NewNoteID(), e.session.ID(), ownerID, "Owner", valueobjects.CategoryIdeas, text, pos, "")
	assert.NoError(t, err)
	assert.NoError(t, e.notes.Save(context.Background(), note))
	return note
}

func TestGetSessionHandler_Handle_ReturnsRoster(t *testing.T) {
	// Arrange
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhaseWaiting)
	handler := NewGetSessionHandler(e.sessions, e.participants, e.logger)

	// Act
	result, err := handler.Handle(ctx, queries.GetSessionQuery{
		SessionID: e.session.ID().String(),
		ActorID:   e.robin.ID().String(),
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, e.session.ID().String(), result.ID)
	assert.Equal(t, "waiting", result.Phase)
	assert.Equal(t, e.session.ModeratorID().String(), result.ModeratorID)
	assert.Len(t, result.Participants, 2)
}

func TestGetSessionHandler_Handle_NonMemberDenied(t *testing.T) {
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhaseWaiting)
	handler := NewGetSessionHandler(e.sessions, e.participants, e.logger)

	_, err := handler.Handle(ctx, queries.GetSessionQuery{
		SessionID: e.session.ID().String(),
		ActorID:   valueobjects.NewParticipantID().String(),
	})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}

func TestListNotesHandler_Handle_PrivatePhaseShowsOnlyOwn(t *testing.T) {
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhasePrivate)
	e.addNote(t, e.moderator.ID(), "moderator note")
	own := e.addNote(t, e.robin.ID(), "robin note")
	handler := NewListNotesHandler(e.sessions, e.participants, e.notes, e.logger)

	visible, err := handler.Handle(ctx, queries.ListNotesQuery{
		SessionID: e.session.ID().String(),
		ActorID:   e.robin.ID().String(),
	})

	assert.NoError(t, err)
	assert.Len(t, visible, 1)
	assert.True(t, visible[0].ID.Equals(own.ID()))
}

func TestListNotesHandler_Handle_CollaborativeShowsAll(t *testing.T) {
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhaseCollaborative)
	e.addNote(t, e.moderator.ID(), "moderator note")
	e.addNote(t, e.robin.ID(), "robin note")
	handler := NewListNotesHandler(e.sessions, e.participants, e.notes, e.logger)

	visible, err := handler.Handle(ctx, queries.ListNotesQuery{
		SessionID: e.session.ID().String(),
		ActorID:   e.robin.ID().String(),
	})

	assert.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestGetNoteHandler_Handle_OwnNote(t *testing.T) {
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhasePrivate)
	note := e.addNote(t, e.robin.ID(), "mine")
	handler := NewGetNoteHandler(e.sessions, e.participants, e.notes, e.logger)

	payload, err := handler.Handle(ctx, queries.GetNoteQuery{
		SessionID: e.session.ID().String(),
		NoteID:    note.ID().String(),
		ActorID:   e.robin.ID().String(),
	})

	assert.NoError(t, err)
	assert.True(t, payload.ID.Equals(note.ID()))
}

func TestGetNoteHandler_Handle_HiddenNoteLooksMissing(t *testing.T) {
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhasePrivate)
	note := e.addNote(t, e.moderator.ID(), "hidden")
	handler := NewGetNoteHandler(e.sessions, e.participants, e.notes, e.logger)

	_, err := handler.Handle(ctx, queries.GetNoteQuery{
		SessionID: e.session.ID().String(),
		NoteID:    note.ID().String(),
		ActorID:   e.robin.ID().String(),
	})

	// A phase-hidden note and a missing note produce the same answer.
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestGetNoteHandler_Handle_VisibleAfterPhaseOpens(t *testing.T) {
	ctx := context.Background()
	e := newQueryEnv(t, valueobjects.PhaseFinished)
	note := e.addNote(t, e.moderator.ID(), "readable now")
	handler := NewGetNoteHandler(e.sessions, e.participants, e.notes, e.logger)

	payload, err := handler.Handle(ctx, queries.GetNoteQuery{
		SessionID: e.session.ID().String(),
		NoteID:    note.ID().String(),
		ActorID:   e.robin.ID().String(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "readable now", payload.Text.String())
}
