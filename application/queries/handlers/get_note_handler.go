package handlers

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/application/queries"
	"retro-backend/domain/authz"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	"retro-backend/pkg/errors"
)

// GetNoteHandler serves GetNoteQuery.
type GetNoteHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	noteRepo        ports.NoteRepository
	logger          *zap.Logger
}

// NewGetNoteHandler creates the handler.
func NewGetNoteHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	noteRepo ports.NoteRepository,
	logger *zap.Logger,
) *GetNoteHandler {
	return &GetNoteHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		noteRepo:        noteRepo,
		logger:          logger,
	}
}

// Handle returns the note if the actor may read it. A note hidden by the
// current phase is indistinguishable from one that does not exist.
func (h *GetNoteHandler) Handle(ctx context.Context, query queries.GetNoteQuery) (*events.NotePayload, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(query.SessionID)
	if err != nil {
		return nil, err
	}
	noteID, err := valueobjects.NewNoteIDFromString(query.NoteID)
	if err != nil {
		return nil, err
	}
	actorID, err := valueobjects.NewParticipantIDFromString(query.ActorID)
	if err != nil {
		return nil, err
	}

	session, err := h.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireMembership(ctx, h.participantRepo, sessionID, actorID); err != nil {
		return nil, err
	}

	note, err := h.noteRepo.GetByID(ctx, sessionID, noteID)
	if err != nil {
		return nil, err
	}

	actor := authz.Actor{ParticipantID: actorID, SessionID: sessionID}
	if !authz.CanReadNote(session.Phase(), note, actor) {
		return nil, errors.NewNotFoundError("note")
	}

	payload := note.Payload()
	return &payload, nil
}
