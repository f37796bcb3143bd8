package handlers

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/application/queries"
	"retro-backend/domain/authz"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
)

// ListNotesHandler serves ListNotesQuery.
type ListNotesHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	noteRepo        ports.NoteRepository
	logger          *zap.Logger
}

// NewListNotesHandler creates the handler.
func NewListNotesHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	noteRepo ports.NoteRepository,
	logger *zap.Logger,
) *ListNotesHandler {
	return &ListNotesHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		noteRepo:        noteRepo,
		logger:          logger,
	}
}

// Handle returns the session's notes the actor may read under the current
// phase. During waiting and private phases that is only the actor's own
// notes.
func (h *ListNotesHandler) Handle(ctx context.Context, query queries.ListNotesQuery) ([]events.NotePayload, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(query.SessionID)
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

	notes, err := h.noteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	actor := authz.Actor{ParticipantID: actorID, SessionID: sessionID}
	visible := make([]events.NotePayload, 0, len(notes))
	for _, note := range notes {
		if authz.CanReadNote(session.Phase(), note, actor) {
			visible = append(visible, note.Payload())
		}
	}
	return visible, nil
}
