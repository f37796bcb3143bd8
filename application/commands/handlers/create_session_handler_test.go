package handlers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"retro-backend/application/commands"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
)

func TestCreateSessionHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	e := newEnv()
	handler := NewCreateSessionHandler(e.sessions, e.participants, e.bus, e.logger)

	cmd := commands.CreateSessionCommand{
		SessionID:            uuid.New().String(),
		ModeratorID:          uuid.New().String(),
		ModeratorDisplayName: "Dana",
	}

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, cmd.SessionID, result.SessionID.String())
	assert.Equal(t, cmd.ModeratorID, result.ModeratorID.String())
	assert.False(t, result.JoinCode.IsZero())

	session, err := e.sessions.GetByID(ctx, result.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, valueobjects.PhaseWaiting, session.Phase())
	assert.True(t, session.ModeratorID().Equals(result.ModeratorID))

	moderator, err := e.participants.GetByID(ctx, result.SessionID, result.ModeratorID)
	assert.NoError(t, err)
	assert.True(t, moderator.IsModerator())
	assert.Equal(t, "Dana", moderator.DisplayName())

	assert.Equal(t, []string{events.TypeSessionCreated, events.TypeParticipantJoined}, e.bus.types())
}

func TestCreateSessionHandler_Handle_JoinCodeResolvable(t *testing.T) {
	// Arrange
	ctx := context.Background()
	e := newEnv()
	handler := NewCreateSessionHandler(e.sessions, e.participants, e.bus, e.logger)

	cmd := commands.CreateSessionCommand{
		SessionID:            uuid.New().String(),
		ModeratorID:          uuid.New().String(),
		ModeratorDisplayName: "Dana",
	}

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert
	assert.NoError(t, err)
	session, err := e.sessions.GetByJoinCode(ctx, result.JoinCode)
	assert.NoError(t, err)
	assert.True(t, session.ID().Equals(result.SessionID))
}

func TestCreateSessionHandler_Handle_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	handler := NewCreateSessionHandler(e.sessions, e.participants, e.bus, e.logger)

	_, err := handler.Handle(ctx, commands.CreateSessionCommand{
		SessionID:            "not-a-uuid",
		ModeratorID:          uuid.New().String(),
		ModeratorDisplayName: "Dana",
	})
	assert.Error(t, err)
	assert.Empty(t, e.bus.types())
}
