package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"retro-backend/application/commands"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	pkgerrors "retro-backend/pkg/errors"
)

func TestDeleteNoteHandler_Handle_OwnerDeletes(t *testing.T) {
	// Arrange
	ctx := context.Background()
	e := newEnv()
	session, _ := e.seedSession(t, valueobjects.PhasePrivate)
	owner := e.seedParticipant(t, session.ID(), "Owner")
	note := e.seedNote(t, session.ID(), owner.ID(), "to delete")
	handler := NewDeleteNoteHandler(e.sessions, e.notes, e.bus, e.logger)

	// Act
	err := handler.Handle(ctx, commands.DeleteNoteCommand{
		SessionID: session.ID().String(),
		NoteID:    note.ID().String(),
		ActorID:   owner.ID().String(),
	})

	// Assert
	assert.NoError(t, err)

	_, err = e.notes.GetByID(ctx, session.ID(), note.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))

	assert.Equal(t, []string{events.TypeNoteDeleted}, e.bus.types())
}

func TestDeleteNoteHandler_Handle_ModeratorDeletes(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	session, moderator := e.seedSession(t, valueobjects.PhaseCollaborative)
	owner := e.seedParticipant(t, session.ID(), "Owner")
	note := e.seedNote(t, session.ID(), owner.ID(), "moderated away")
	handler := NewDeleteNoteHandler(e.sessions, e.notes, e.bus, e.logger)

	err := handler.Handle(ctx, commands.DeleteNoteCommand{
		SessionID: session.ID().String(),
		NoteID:    note.ID().String(),
		ActorID:   moderator.ID().String(),
	})

	assert.NoError(t, err)
}

func TestDeleteNoteHandler_Handle_PeerDenied(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	session, _ := e.seedSession(t, valueobjects.PhaseCollaborative)
	owner := e.seedParticipant(t, session.ID(), "Owner")
	peer := e.seedParticipant(t, session.ID(), "Peer")
	note := e.seedNote(t, session.ID(), owner.ID(), "still here")
	handler := NewDeleteNoteHandler(e.sessions, e.notes, e.bus, e.logger)

	err := handler.Handle(ctx, commands.DeleteNoteCommand{
		SessionID: session.ID().String(),
		NoteID:    note.ID().String(),
		ActorID:   peer.ID().String(),
	})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))

	_, err = e.notes.GetByID(ctx, session.ID(), note.ID())
	assert.NoError(t, err, "note survives the denied delete")
}

func TestDeleteNoteHandler_Handle_NotFound(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	session, moderator := e.seedSession(t, valueobjects.PhasePrivate)
	handler := NewDeleteNoteHandler(e.sessions, e.notes, e.bus, e.logger)

	err := handler.Handle(ctx, commands.DeleteNoteCommand{
		SessionID: session.ID().String(),
		NoteID:    valueobjects.NewNoteID().String(),
		ActorID:   moderator.ID().String(),
	})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}
