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

// JoinSessionHandler handles the JoinSessionCommand
type JoinSessionHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	eventBus        ports.EventBus
	logger          *zap.Logger
}

// NewJoinSessionHandler creates a new handler instance
func NewJoinSessionHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *JoinSessionHandler {
	return &JoinSessionHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		eventBus:        eventBus,
		logger:          logger,
	}
}

// Handle executes the join session command. The join code was resolved to a
// session ID before enqueueing; the session is re-read here, inside the
// serialized queue, so a concurrent finish cannot slip a participant into a
// closed session.
func (h *JoinSessionHandler) Handle(ctx context.Context, cmd commands.JoinSessionCommand) (*JoinSessionResult, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(cmd.SessionID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	participantID, err := valueobjects.NewParticipantIDFromString(cmd.ParticipantID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	joinCode, err := valueobjects.ParseJoinCode(cmd.JoinCode)
	if err != nil {
		return nil, err
	}

	session, err := h.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.JoinCode().Equals(joinCode) {
		return nil, pkgerrors.NewNotFoundError("session")
	}
	if session.Phase().IsTerminal() {
		return nil, pkgerrors.NewInvalidPhaseError("session has finished")
	}

	participant, err := entities.NewParticipant(participantID, sessionID, cmd.DisplayName, false)
	if err != nil {
		return nil, err
	}

	if err := h.participantRepo.Save(ctx, participant); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.eventBus, h.logger, participant.DomainEvents())
	participant.ClearEvents()

	h.logger.Info("participant joined",
		zap.String("sessionID", sessionID.String()),
		zap.String("participantID", participantID.String()),
	)

	return &JoinSessionResult{
		SessionID:     sessionID,
		ParticipantID: participantID,
		Phase:         session.Phase(),
	}, nil
}
