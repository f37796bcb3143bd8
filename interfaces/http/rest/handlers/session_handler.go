package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retro-backend/application/commands"
	cmdhandlers "retro-backend/application/commands/handlers"
	"retro-backend/application/coordinator"
	"retro-backend/application/ports"
	"retro-backend/application/queries"
	querybus "retro-backend/application/queries/bus"
	"retro-backend/pkg/auth"
	pkgerrors "retro-backend/pkg/errors"
	"retro-backend/pkg/observability"
	"retro-backend/pkg/utils"

	"retro-backend/domain/core/valueobjects"
)

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	coordinator *coordinator.Coordinator
	queryBus    *querybus.QueryBus
	sessionRepo ports.SessionRepository
	tokens      *auth.TokenService
	metrics     *observability.Collector
	logger      *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	coord *coordinator.Coordinator,
	queryBus *querybus.QueryBus,
	sessionRepo ports.SessionRepository,
	tokens *auth.TokenService,
	metrics *observability.Collector,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		coordinator: coord,
		queryBus:    queryBus,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateSessionRequest represents the request body for creating a session
type CreateSessionRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=64"`
}

// SessionTokenResponse is returned by the two entry points that establish
// identity (create and join). The token authenticates all later requests.
type SessionTokenResponse struct {
	SessionID     string `json:"session_id"`
	JoinCode      string `json:"join_code,omitempty"`
	ParticipantID string `json:"participant_id"`
	Phase         string `json:"phase"`
	Token         string `json:"token"`
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	cmd := commands.CreateSessionCommand{
		SessionID:            uuid.New().String(),
		ModeratorID:          uuid.New().String(),
		ModeratorDisplayName: req.DisplayName,
	}

	result, err := h.coordinator.Submit(r.Context(), cmd)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	created := result.(*cmdhandlers.CreateSessionResult)

	token, err := h.tokens.Issue(created.SessionID, created.ModeratorID, true)
	if err != nil {
		respondError(w, h.logger, pkgerrors.NewInternalError("failed to issue token").WithCause(err))
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsCreated.Inc()
	}

	respondJSON(w, h.logger, http.StatusCreated, SessionTokenResponse{
		SessionID:     created.SessionID.String(),
		JoinCode:      created.JoinCode.String(),
		ParticipantID: created.ModeratorID.String(),
		Phase:         valueobjects.PhaseWaiting.String(),
		Token:         token,
	})
}

// JoinSessionRequest represents the request body for joining a session
type JoinSessionRequest struct {
	JoinCode    string `json:"join_code" validate:"required"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=64"`
}

// JoinSession handles POST /sessions/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req JoinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	code, err := valueobjects.ParseJoinCode(req.JoinCode)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	// Resolve the code to a session so the command can be routed to that
	// session's queue. The handler re-checks the code inside the queue.
	session, err := h.sessionRepo.GetByJoinCode(r.Context(), code)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	cmd := commands.JoinSessionCommand{
		SessionID:     session.ID().String(),
		JoinCode:      code.String(),
		ParticipantID: uuid.New().String(),
		DisplayName:   req.DisplayName,
	}

	result, err := h.coordinator.Submit(r.Context(), cmd)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	joined := result.(*cmdhandlers.JoinSessionResult)

	token, err := h.tokens.Issue(joined.SessionID, joined.ParticipantID, false)
	if err != nil {
		respondError(w, h.logger, pkgerrors.NewInternalError("failed to issue token").WithCause(err))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, SessionTokenResponse{
		SessionID:     joined.SessionID.String(),
		ParticipantID: joined.ParticipantID.String(),
		Phase:         joined.Phase.String(),
		Token:         token,
	})
}

// GetSession handles GET /sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if actor.SessionID.String() != sessionID {
		respondError(w, h.logger, pkgerrors.NewUnauthorizedError("token does not grant access to this session"))
		return
	}

	result, err := h.queryBus.Send(r.Context(), queries.GetSessionQuery{
		SessionID: sessionID,
		ActorID:   actor.ParticipantID.String(),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// AdvancePhase handles POST /sessions/{sessionID}/phase/advance
func (h *SessionHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if actor.SessionID.String() != sessionID {
		respondError(w, h.logger, pkgerrors.NewUnauthorizedError("token does not grant access to this session"))
		return
	}

	cmd := commands.AdvancePhaseCommand{
		SessionID: sessionID,
		ActorID:   actor.ParticipantID.String(),
	}
	result, err := h.coordinator.Submit(r.Context(), cmd)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	advanced := result.(*cmdhandlers.AdvancePhaseResult)

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"phase":      advanced.Phase.String(),
	})
}

// SetCompletedRequest represents the request body for the completion flag
type SetCompletedRequest struct {
	Completed bool `json:"completed"`
}

// SetCompleted handles PUT /sessions/{sessionID}/participants/{participantID}/completed
func (h *SessionHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if actor.SessionID.String() != sessionID {
		respondError(w, h.logger, pkgerrors.NewUnauthorizedError("token does not grant access to this session"))
		return
	}

	var req SetCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.SetCompletedCommand{
		SessionID:     sessionID,
		ParticipantID: chi.URLParam(r, "participantID"),
		ActorID:       actor.ParticipantID.String(),
		Completed:     req.Completed,
	}
	if _, err := h.coordinator.Submit(r.Context(), cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"participant_id": cmd.ParticipantID,
		"completed":      req.Completed,
	})
}
