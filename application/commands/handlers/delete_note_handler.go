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

// DeleteNoteHandler handles note deletion commands
type DeleteNoteHandler struct {
	sessionRepo ports.SessionRepository
	noteRepo    ports.NoteRepository
	eventBus    ports.EventBus
	logger      *zap.Logger
}

// NewDeleteNoteHandler creates a new delete note handler
func NewDeleteNoteHandler(
	sessionRepo ports.SessionRepository,
	noteRepo ports.NoteRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeleteNoteHandler {
	return &DeleteNoteHandler{
		sessionRepo: sessionRepo,
		noteRepo:    noteRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Handle executes the delete note command
func (h *DeleteNoteHandler) Handle(ctx context.Context, cmd commands.DeleteNoteCommand) error {
	sessionID, err := valueobjects.NewSessionIDFromString(cmd.SessionID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	noteID, err := valueobjects.NewNoteIDFromString(cmd.NoteID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	actorID, err := valueobjects.NewParticipantIDFromString(cmd.ActorID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	session, err := h.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	note, err := h.noteRepo.GetByID(ctx, sessionID, noteID)
	if err != nil {
		return err
	}

	actor := authz.Actor{
		ParticipantID: actorID,
		SessionID:     sessionID,
		IsModerator:   session.ModeratorID().Equals(actorID),
	}
	if !authz.CanWriteNote(note, actor) {
		return pkgerrors.NewUnauthorizedError("only the note owner or the moderator may delete this note")
	}

	if err := h.noteRepo.Delete(ctx, sessionID, noteID); err != nil {
		return err
	}

	note.RecordDeleted()
	publishEvents(ctx, h.eventBus, h.logger, note.DomainEvents())
	note.ClearEvents()

	h.logger.Info("note deleted",
		zap.String("sessionID", sessionID.String()),
		zap.String("noteID", noteID.String()),
		zap.String("actorID", actorID.String()),
	)

	return nil
}
