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

// UpdateNoteHandler handles note update commands
type UpdateNoteHandler struct {
	sessionRepo  ports.SessionRepository
	noteRepo     ports.NoteRepository
	eventBus     ports.EventBus
	domainConfig ports.DomainConfigProvider
	logger       *zap.Logger
}

// NewUpdateNoteHandler creates a new update note handler
func NewUpdateNoteHandler(
	sessionRepo ports.SessionRepository,
	noteRepo ports.NoteRepository,
	eventBus ports.EventBus,
	domainConfig ports.DomainConfigProvider,
	logger *zap.Logger,
) *UpdateNoteHandler {
	return &UpdateNoteHandler{
		sessionRepo:  sessionRepo,
		noteRepo:     noteRepo,
		eventBus:     eventBus,
		domainConfig: domainConfig,
		logger:       logger,
	}
}

// Handle executes the update note command. All requested field changes are
// applied together and produce a single NoteUpdated event; a command that
// changes nothing emits nothing.
func (h *UpdateNoteHandler) Handle(ctx context.Context, cmd commands.UpdateNoteCommand) (*entities.Note, error) {
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
	note, err := h.noteRepo.GetByID(ctx, sessionID, noteID)
	if err != nil {
		return nil, err
	}

	actor := authz.Actor{
		ParticipantID: actorID,
		SessionID:     sessionID,
		IsModerator:   session.ModeratorID().Equals(actorID),
	}
	if !authz.CanWriteNote(note, actor) {
		return nil, pkgerrors.NewUnauthorizedError("only the note owner or the moderator may modify this note")
	}

	changed := false

	if cmd.Text != nil {
		text, err := valueobjects.NewNoteTextWithConfig(*cmd.Text, h.domainConfig.DomainConfig())
		if err != nil {
			return nil, err
		}
		changed = note.UpdateText(text) || changed
	}
	if cmd.Category != nil {
		category, err := valueobjects.ParseCategory(*cmd.Category)
		if err != nil {
			return nil, err
		}
		changed = note.ChangeCategory(category) || changed
	}
	if cmd.X != nil || cmd.Y != nil {
		x := note.Position().X()
		y := note.Position().Y()
		if cmd.X != nil {
			x = *cmd.X
		}
		if cmd.Y != nil {
			y = *cmd.Y
		}
		position, err := valueobjects.NewPosition(x, y)
		if err != nil {
			return nil, err
		}
		changed = note.MoveTo(position) || changed
	}
	if cmd.GroupID != nil {
		changed = note.SetGroup(*cmd.GroupID) || changed
	}

	if !changed {
		return note, nil
	}

	note.RecordUpdated()

	if err := h.noteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.eventBus, h.logger, note.DomainEvents())
	note.ClearEvents()

	return note, nil
}
