package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retro-backend/application/commands"
	"retro-backend/application/coordinator"
	"retro-backend/application/queries"
	querybus "retro-backend/application/queries/bus"
	"retro-backend/domain/core/entities"
	"retro-backend/pkg/auth"
	pkgerrors "retro-backend/pkg/errors"
	"retro-backend/pkg/observability"
	"retro-backend/pkg/utils"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	coordinator *coordinator.Coordinator
	queryBus    *querybus.QueryBus
	metrics     *observability.Collector
	logger      *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(
	coord *coordinator.Coordinator,
	queryBus *querybus.QueryBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *NoteHandler {
	return &NoteHandler{
		coordinator: coord,
		queryBus:    queryBus,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateNoteRequest represents the request body for creating a note
type CreateNoteRequest struct {
	Category string  `json:"category" validate:"required,oneof=keep improve ideas stop"`
	Text     string  `json:"text" validate:"required"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	GroupID  string  `json:"group_id,omitempty" validate:"omitempty,max=64"`
}

// UpdateNoteRequest represents the request body for updating a note.
// Absent fields are left untouched; a present empty group_id ungroups.
type UpdateNoteRequest struct {
	Text     *string  `json:"text,omitempty"`
	Category *string  `json:"category,omitempty" validate:"omitempty,oneof=keep improve ideas stop"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	GroupID  *string  `json:"group_id,omitempty" validate:"omitempty,max=64"`
}

func (h *NoteHandler) sessionScope(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return "", "", false
	}
	sessionID := chi.URLParam(r, "sessionID")
	if actor.SessionID.String() != sessionID {
		respondError(w, h.logger, pkgerrors.NewUnauthorizedError("token does not grant access to this session"))
		return "", "", false
	}
	return sessionID, actor.ParticipantID.String(), true
}

// CreateNote handles POST /sessions/{sessionID}/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	cmd := commands.CreateNoteCommand{
		SessionID: sessionID,
		NoteID:    uuid.New().String(),
		ActorID:   actorID,
		Category:  req.Category,
		Text:      req.Text,
		X:         req.X,
		Y:         req.Y,
		GroupID:   req.GroupID,
	}

	result, err := h.coordinator.Submit(r.Context(), cmd)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	note := result.(*entities.Note)

	if h.metrics != nil {
		h.metrics.NotesCreated.Inc()
	}
	respondJSON(w, h.logger, http.StatusCreated, note.Payload())
}

// ListNotes handles GET /sessions/{sessionID}/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Send(r.Context(), queries.ListNotesQuery{
		SessionID: sessionID,
		ActorID:   actorID,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"notes": result})
}

// GetNote handles GET /sessions/{sessionID}/notes/{noteID}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Send(r.Context(), queries.GetNoteQuery{
		SessionID: sessionID,
		NoteID:    chi.URLParam(r, "noteID"),
		ActorID:   actorID,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// UpdateNote handles PATCH /sessions/{sessionID}/notes/{noteID}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	cmd := commands.UpdateNoteCommand{
		SessionID: sessionID,
		NoteID:    chi.URLParam(r, "noteID"),
		ActorID:   actorID,
		Text:      req.Text,
		Category:  req.Category,
		X:         req.X,
		Y:         req.Y,
		GroupID:   req.GroupID,
	}

	result, err := h.coordinator.Submit(r.Context(), cmd)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	note := result.(*entities.Note)
	respondJSON(w, h.logger, http.StatusOK, note.Payload())
}

// DeleteNote handles DELETE /sessions/{sessionID}/notes/{noteID}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	cmd := commands.DeleteNoteCommand{
		SessionID: sessionID,
		NoteID:    chi.URLParam(r, "noteID"),
		ActorID:   actorID,
	}

	if _, err := h.coordinator.Submit(r.Context(), cmd); err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.NotesDeleted.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}
