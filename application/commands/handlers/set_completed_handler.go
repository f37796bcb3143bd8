package handlers

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/commands"
	"retro-backend/application/ports"
	"retro-backend/domain/authz"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	pkgerrors "retro-backend/pkg/errors"
)

// SetCompletedHandler handles completion flag commands
type SetCompletedHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	eventBus        ports.EventBus
	logger          *zap.Logger
}

// NewSetCompletedHandler creates a new handler instance
func NewSetCompletedHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *SetCompletedHandler {
	return &SetCompletedHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		eventBus:        eventBus,
		logger:          logger,
	}
}

// Handle executes the set completed command. Setting the flag to its
// current value is not an error and emits no event.
func (h *SetCompletedHandler) Handle(ctx context.Context, cmd commands.SetCompletedCommand) (*entities.Participant, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(cmd.SessionID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	participantID, err := valueobjects.NewParticipantIDFromString(cmd.ParticipantID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	actorID, err := valueobjects.NewParticipantIDFromString(cmd.ActorID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	session, err := h.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Phase() != valueobjects.PhasePrivate {
		return nil, pkgerrors.NewInvalidPhaseError("completion can only be set during the private phase")
	}

	actor := authz.Actor{ParticipantID: actorID, SessionID: sessionID}
	if !authz.CanSetCompleted(participantID, actor) {
		return nil, pkgerrors.NewUnauthorizedError("participants may only set their own completion flag")
	}

	participant, err := h.participantRepo.GetByID(ctx, sessionID, participantID)
	if err != nil {
		return nil, err
	}

	if !participant.SetCompleted(cmd.Completed) {
		return participant, nil
	}

	if err := h.participantRepo.Save(ctx, participant); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.eventBus, h.logger, participant.DomainEvents())
	participant.ClearEvents()

	h.logger.Info("completion changed",
		zap.String("sessionID", sessionID.String()),
		zap.String("participantID", participantID.String()),
		zap.Bool("completed", cmd.Completed),
	)

	return participant, nil
}
