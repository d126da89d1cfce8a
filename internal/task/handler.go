package task

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/auth"
	"github.com/ZINSTEM/SoloGym/internal/progression"
	"github.com/ZINSTEM/SoloGym/internal/task/entity"
	taskrepo "github.com/ZINSTEM/SoloGym/internal/task/repo"
	"github.com/ZINSTEM/SoloGym/pkg/database"
)

// Handler exposes HTTP endpoints for missions, including completion.
type Handler struct {
	svc         *Service
	progression *progression.Service
	logger      *zap.SugaredLogger
}

func NewHandler(svc *Service, prog *progression.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, progression: prog, logger: logger}
}

// TaskRequest carries the editable mission fields for create and update.
type TaskRequest struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Difficulty string     `json:"difficulty"`
	XPReward   int        `json:"xpReward"`
	Deadline   *time.Time `json:"deadline"`
}

func (req *TaskRequest) toInput() CreateInput {
	return CreateInput{
		Name:       req.Name,
		Type:       entity.Type(req.Type),
		Difficulty: entity.Difficulty(req.Difficulty),
		XPReward:   req.XPReward,
		Deadline:   req.Deadline,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var f taskrepo.ListFilter
	if v := r.URL.Query().Get("completed"); v != "" {
		completed := v == "true"
		f.Completed = &completed
	}
	if v := r.URL.Query().Get("type"); v != "" {
		t := entity.Type(v)
		f.Type = &t
	}
	tasks, err := h.svc.List(r.Context(), auth.UserID(r.Context()), f)
	if err != nil {
		h.writeError(w, "list missions", err)
		return
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	t, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), req.toInput())
	if err != nil {
		h.writeError(w, "create mission", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "load mission", err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	t, err := h.svc.Update(r.Context(), r.PathValue("id"), auth.UserID(r.Context()), req.toInput())
	if err != nil {
		h.writeError(w, "update mission", err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id"), auth.UserID(r.Context())); err != nil {
		h.writeError(w, "delete mission", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// Complete hands the mission to the progression orchestrator and returns the
// composed result: task, refreshed user, leveledUp flag and xpGained.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	result, err := h.progression.CompleteTask(r.Context(), r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		switch {
		case err == progression.ErrTaskNotFound || err == progression.ErrUserNotFound:
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		case err == progression.ErrAlreadyCompleted:
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "already completed"})
		case database.IsUnavailable(err):
			h.logger.Errorw("complete mission failed, database unreachable", "err", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unavailable, try again later"})
		default:
			h.logger.Warnw("complete mission failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "complete mission failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// writeError maps CRUD service errors to status codes.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case err == ErrNotFound:
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
	case err == ErrInvalidInput:
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task payload"})
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
