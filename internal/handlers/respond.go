package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/middleware"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/utils"
	"go.uber.org/zap"
)

// Error codes of the client-facing envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 20

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// decodeBody reads a JSON request body into dst, answering 400 itself on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return false
	}
	return true
}

// writeServiceError maps a service error onto the envelope. Internal errors
// are logged; the client only sees a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		var verrs utils.ValidationErrors
		if errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, CodeValidation, "Validation failed", verrs)
			return
		}
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", nil)
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, CodeConflict, "Resource already exists", nil)
	default:
		log.Errorw("request failed",
			"requestID", middleware.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
	}
}

// currentUser returns the user stored by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", nil)
		return nil, false
	}
	return user, true
}
