package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/user/entity"
	"github.com/ZINSTEM/SoloGym/pkg/database"
)

// Handler exposes HTTP endpoints for registration and login.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the user plus a fresh access token.
type SessionResponse struct {
	*entity.User
	Token string `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, token, err := h.svc.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case err == ErrInvalidInput:
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password required"})
		case err == ErrEmailTaken:
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already registered"})
		case database.IsUnavailable(err):
			h.logger.Errorw("register failed, database unreachable", "err", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unavailable, try again later"})
		default:
			h.logger.Warnw("register failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, SessionResponse{User: u, Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case err == ErrInvalidInput:
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password required"})
		case err == ErrBadCredentials:
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		case database.IsUnavailable(err):
			h.logger.Errorw("login failed, database unreachable", "err", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unavailable, try again later"})
		default:
			h.logger.Warnw("login failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, SessionResponse{User: u, Token: token})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
