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

// CreateNoteHandler handles the CreateNoteCommand
type CreateNoteHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	noteRepo        ports.NoteRepository
	eventBus        ports.EventBus
	domainConfig    ports.DomainConfigProvider
	logger          *zap.Logger
}

// NewCreateNoteHandler creates a new handler instance
func NewCreateNoteHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	noteRepo ports.NoteRepository,
	eventBus ports.EventBus,
	domainConfig ports.DomainConfigProvider,
	logger *zap.Logger,
) *CreateNoteHandler {
	return &CreateNoteHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		noteRepo:        noteRepo,
		eventBus:        eventBus,
		domainConfig:    domainConfig,
		logger:          logger,
	}
}

// Handle executes the create note command
func (h *CreateNoteHandler) Handle(ctx context.Context, cmd commands.CreateNoteCommand) (*entities.Note, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(cmd.SessionID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	noteID, err := valueobjects.NewNoteIDFromString(cmd.NoteID)
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
	if !session.Phase().AllowsNoteCreation() {
		return nil, pkgerrors.NewInvalidPhaseError(
			"notes can only be created during the private or collaborative phase")
	}

	// The acting participant is always the owner-to-be; notes cannot be
	// created on another's behalf. Membership is the remaining check.
	actor, err := h.participantRepo.GetByID(ctx, sessionID, actorID)
	if err != nil {
		if pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound) {
			return nil, pkgerrors.NewUnauthorizedError("not a participant of this session")
		}
		return nil, err
	}

	category, err := valueobjects.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	text, err := valueobjects.NewNoteTextWithConfig(cmd.Text, h.domainConfig.DomainConfig())
	if err != nil {
		return nil, err
	}
	position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	note, err := entities.NewNote(noteID, sessionID, actorID, actor.DisplayName(), category, text, position, cmd.GroupID)
	if err != nil {
		return nil, err
	}

	if err := h.noteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.eventBus, h.logger, note.DomainEvents())
	note.ClearEvents()

	return note, nil
}
