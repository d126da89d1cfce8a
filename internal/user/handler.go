package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/auth"
	"github.com/ZINSTEM/SoloGym/internal/user/entity"
	"github.com/ZINSTEM/SoloGym/pkg/database"
)

// Handler exposes HTTP endpoints for profile, attribute allocation and history.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Profile(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "load profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	userID := auth.UserID(r.Context())
	if req.DisplayName == nil {
		// nothing to change; respond with the current profile
		h.Profile(w, r)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), userID, *req.DisplayName)
	if err != nil {
		h.writeError(w, "update profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	var delta entity.AttributeDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, err := h.svc.Allocate(r.Context(), auth.UserID(r.Context()), delta)
	if err != nil {
		h.writeError(w, "allocate attributes", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) AttributeHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	snaps, err := h.svc.AttributeHistory(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		h.writeError(w, "load attribute history", err)
		return
	}
	if snaps == nil {
		snaps = []entity.AttributeSnapshot{}
	}
	h.writeJSON(w, http.StatusOK, snaps)
}

// writeError maps service errors to status codes.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case err == ErrNotFound:
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
	case err == ErrInsufficientPoints:
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "not enough points"})
	case err == ErrInvalidInput:
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "attribute deltas must be non-negative"})
	case database.IsUnavailable(err):
		h.logger.Errorw(op+" failed, database unreachable", "err", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unavailable, try again later"})
	default:
		h.logger.Warnw(op+" failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
