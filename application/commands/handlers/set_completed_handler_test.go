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

func TestSetCompletedHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	e := newEnv()
	session, _ := e.seedSession(t, valueobjects.PhasePrivate)
	participant := e.seedParticipant(t, session.ID(), "Robin")
	handler := NewSetCompletedHandler(e.sessions, e.participants, e.bus, e.logger)

	cmd := commands.SetCompletedCommand{
		SessionID:     session.ID().String(),
		ParticipantID: participant.ID().String(),
		ActorID:       participant.ID().String(),
		Completed:     true,
	}

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert
	assert.NoError(t, err)
	assert.True(t, result.IsCompleted())

	stored, err := e.participants.GetByID(ctx, session.ID(), participant.ID())
	assert.NoError(t, err)
	assert.True(t, stored.IsCompleted())

	assert.Equal(t, []string{events.TypeParticipantCompletionChanged}, e.bus.types())
}

func TestSetCompletedHandler_Handle_RepeatIsNoop(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	session, _ := e.seedSession(t, valueobjects.PhasePrivate)
	participant := e.seedParticipant(t, session.ID(), "Robin")
	handler := NewSetCompletedHandler(e.sessions, e.participants, e.bus, e.logger)

	cmd := commands.SetCompletedCommand{
		SessionID:     session.ID().String(),
		ParticipantID: participant.ID().String(),
		ActorID:       participant.ID().String(),
		Completed:     true,
	}

	_, err := handler.Handle(ctx, cmd)
	assert.NoError(t, err)
	_, err = handler.Handle(ctx, cmd)
	assert.NoError(t, err)

	// Only the first toggle produced an event.
	assert.Len(t, e.bus.types(), 1)
}

func TestSetCompletedHandler_Handle_OutsidePrivatePhase(t *testing.T) {
	ctx := context.Background()

	for _, phase := range []valueobjects.Phase{
		valueobjects.PhaseWaiting,
		valueobjects.PhaseCollaborative,
		valueobjects.PhaseFinished,
	} {
		e := newEnv()
		session, _ := e.seedSession(t, phase)
		participant := e.seedParticipant(t, session.ID(), "Robin")
		handler := NewSetCompletedHandler(e.sessions, e.participants, e.bus, e.logger)

		_, err := handler.Handle(ctx, commands.SetCompletedCommand{
			SessionID:     session.ID().String(),
			ParticipantID: participant.ID().String(),
			ActorID:       participant.ID().String(),
			Completed:     true,
		})

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidPhase), "phase %s", phase)
	}
}

func TestSetCompletedHandler_Handle_OnlySelf(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	session, moderator := e.seedSession(t, valueobjects.PhasePrivate)
	participant := e.seedParticipant(t, session.ID(), "Robin")
	handler := NewSetCompletedHandler(e.sessions, e.participants, e.bus, e.logger)

	_, err := handler.Handle(ctx, commands.SetCompletedCommand{
		SessionID:     session.ID().String(),
		ParticipantID: participant.ID().String(),
		ActorID:       moderator.ID().String(),
		Completed:     true,
	})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
	assert.Empty(t, e.bus.types())
}
