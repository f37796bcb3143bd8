package handlers

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/commands"
	"retro-backend/application/ports"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	pkgerrors "retro-backend/pkg/errors"
)

// joinCodeAttempts bounds the collision retry loop when generating a join
// code against the set of active sessions.
const joinCodeAttempts = 5

// CreateSessionHandler handles the CreateSessionCommand
type CreateSessionHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	eventBus        ports.EventBus
	logger          *zap.Logger
}

// NewCreateSessionHandler creates a new handler instance
func NewCreateSessionHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CreateSessionHandler {
	return &CreateSessionHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		eventBus:        eventBus,
		logger:          logger,
	}
}

// Handle executes the create session command
func (h *CreateSessionHandler) Handle(ctx context.Context, cmd commands.CreateSessionCommand) (*CreateSessionResult, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(cmd.SessionID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	moderatorID, err := valueobjects.NewParticipantIDFromString(cmd.ModeratorID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	joinCode, err := h.generateUniqueJoinCode(ctx)
	if err != nil {
		return nil, err
	}

	session, err := entities.NewSession(sessionID, joinCode, moderatorID)
	if err != nil {
		return nil, err
	}

	moderator, err := entities.NewParticipant(moderatorID, sessionID, cmd.ModeratorDisplayName, true)
	if err != nil {
		return nil, err
	}

	if err := h.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	if err := h.participantRepo.Save(ctx, moderator); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.eventBus, h.logger, session.DomainEvents())
	publishEvents(ctx, h.eventBus, h.logger, moderator.DomainEvents())
	session.ClearEvents()
	moderator.ClearEvents()

	h.logger.Info("session created",
		zap.String("sessionID", sessionID.String()),
		zap.String("joinCode", joinCode.String()),
	)

	return &CreateSessionResult{
		SessionID:   sessionID,
		JoinCode:    joinCode,
		ModeratorID: moderatorID,
	}, nil
}

// generateUniqueJoinCode draws codes until one does not resolve to an
// active session. Codes held by finished sessions are considered free.
func (h *CreateSessionHandler) generateUniqueJoinCode(ctx context.Context) (valueobjects.JoinCode, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code, err := valueobjects.GenerateJoinCode()
		if err != nil {
			return valueobjects.JoinCode{}, pkgerrors.NewInternalError("failed to generate join code").WithCause(err)
		}

		_, err = h.sessionRepo.GetByJoinCode(ctx, code)
		if pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound) {
			return code, nil
		}
		if err != nil {
			return valueobjects.JoinCode{}, err
		}
		// Collision with an active session, draw again.
	}
	return valueobjects.JoinCode{}, pkgerrors.NewInternalError("could not allocate a unique join code")
}
