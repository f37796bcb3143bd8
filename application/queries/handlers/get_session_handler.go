package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/application/queries"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/pkg/errors"
)

// ParticipantResult is one roster entry of a session read.
type ParticipantResult struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	IsModerator bool      `json:"is_moderator"`
	IsCompleted bool      `json:"is_completed"`
	JoinedAt    time.Time `json:"joined_at"`
}

// SessionResult is the read model for session metadata plus roster.
type SessionResult struct {
	ID             string              `json:"id"`
	JoinCode       string              `json:"join_code"`
	Phase          string              `json:"phase"`
	ModeratorID    string              `json:"moderator_id"`
	CreatedAt      time.Time           `json:"created_at"`
	PhaseChangedAt time.Time           `json:"phase_changed_at"`
	Participants   []ParticipantResult `json:"participants"`
}

// GetSessionHandler serves GetSessionQuery.
type GetSessionHandler struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	logger          *zap.Logger
}

// NewGetSessionHandler creates the handler.
func NewGetSessionHandler(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	logger *zap.Logger,
) *GetSessionHandler {
	return &GetSessionHandler{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		logger:          logger,
	}
}

// Handle loads the session and roster for a member of the session.
func (h *GetSessionHandler) Handle(ctx context.Context, query queries.GetSessionQuery) (*SessionResult, error) {
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

	participants, err := h.participantRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &SessionResult{
		ID:             session.ID().String(),
		JoinCode:       session.JoinCode().String(),
		Phase:          session.Phase().String(),
		ModeratorID:    session.ModeratorID().String(),
		CreatedAt:      session.CreatedAt(),
		PhaseChangedAt: session.PhaseChangedAt(),
		Participants:   make([]ParticipantResult, 0, len(participants)),
	}
	for _, p := range participants {
		result.Participants = append(result.Participants, ParticipantResult{
			ID:          p.ID().String(),
			DisplayName: p.DisplayName(),
			IsModerator: p.IsModerator(),
			IsCompleted: p.IsCompleted(),
			JoinedAt:    p.JoinedAt(),
		})
	}
	return result, nil
}

// requireMembership resolves the actor as a participant of the session.
// Non-members get an authorization error, not a not-found, because the
// session itself was addressed directly by ID.
func requireMembership(ctx context.Context, repo ports.ParticipantRepository, sessionID valueobjects.SessionID, actorID valueobjects.ParticipantID) error {
	_, err := repo.GetByID(ctx, sessionID, actorID)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return errors.NewUnauthorizedError("not a participant of this session")
		}
		return err
	}
	return nil
}
