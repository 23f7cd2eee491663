package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/services"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.SugaredLogger
}

func NewAuthHandler(auth *services.AuthService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var verrs utils.ValidationErrors
	verrs.Required("id", req.ID)
	verrs.Required("password", req.Password)
	if len(verrs) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidation, "Validation failed", verrs)
		return
	}

	res, err := h.auth.Authenticate(r.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid id or password", nil)
			return
		}
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Register handles POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			writeError(w, http.StatusConflict, CodeConflict, "A user with this id already exists", nil)
			return
		}
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}
