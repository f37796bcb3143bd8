package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "retro-backend/pkg/errors"
)

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError maps application errors onto HTTP responses. The error type
// travels in the body so clients can react without parsing messages.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := pkgerrors.HTTPStatusOf(err)

	body := map[string]interface{}{
		"error":   true,
		"code":    status,
		"type":    string(pkgerrors.TypeOf(err)),
		"message": err.Error(),
	}
	if appErr, ok := err.(*pkgerrors.AppError); ok {
		body["message"] = appErr.Message
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		body["message"] = "internal error"
	}

	respondJSON(w, logger, status, body)
}
