package handlers

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/commands"
	"retro-backend/application/ports"
	"retro-backend/domain/authz"
	"retro-backend/domain/core/valueobjects"
	pkgerrors "retro-backend/pkg/errors"
)

// AdvancePhaseHandler handles phase transition commands. It runs inside the
// session's serialized queue, so the completion gate always sees a
// consistent roster snapshot relative to concurrent SetCompleted commands.
type AdvancePhaseHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	eventBus        ports.EventBus
	logger          *zap.Logger
}

// NewAdvancePhaseHandler creates a new handler instance
func NewAdvancePhaseHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *AdvancePhaseHandler {
	return &AdvancePhaseHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		eventBus:        eventBus,
		logger:          logger,
	}
}

// Handle executes the advance phase command
func (h *AdvancePhaseHandler) Handle(ctx context.Context, cmd commands.AdvancePhaseCommand) (*AdvancePhaseResult, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(cmd.SessionID)
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

	actor := authz.Actor{
		ParticipantID: actorID,
		SessionID:     sessionID,
		IsModerator:   session.ModeratorID().Equals(actorID),
	}
	if !authz.CanAdvancePhase(session, actor) {
		return nil, pkgerrors.NewUnauthorizedError("only the moderator may advance the session phase")
	}

	if session.Phase().IsTerminal() {
		return nil, pkgerrors.NewInvalidTransitionError("session is already finished")
	}

	// The private -> collaborative gate: every current participant,
	// moderator included, must have completed their private reflection.
	if session.Phase() == valueobjects.PhasePrivate {
		roster, err := h.participantRepo.ListBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		var incomplete []string
		for _, p := range roster {
			if !p.IsCompleted() {
				incomplete = append(incomplete, p.ID().String())
			}
		}
		if len(incomplete) > 0 {
			return nil, pkgerrors.NewPhaseGateError("not every participant has completed their reflection").
				WithDetails(map[string]interface{}{"incomplete": incomplete})
		}
	}

	newPhase, err := session.AdvancePhase(actorID)
	if err != nil {
		return nil, err
	}

	if err := h.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.eventBus, h.logger, session.DomainEvents())
	session.ClearEvents()

	h.logger.Info("phase advanced",
		zap.String("sessionID", sessionID.String()),
		zap.String("phase", newPhase.String()),
	)

	return &AdvancePhaseResult{Phase: newPhase}, nil
}
