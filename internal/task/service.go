package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/task/entity"
	taskrepo "github.com/ZINSTEM/SoloGym/internal/task/repo"
	"github.com/ZINSTEM/SoloGym/pkg/utilities"
)

// sentinel errors for common failure modes
var (
	ErrNotFound     = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
)

// CreateInput carries the editable mission fields.
type CreateInput struct {
	Name       string
	Type       entity.Type
	Difficulty entity.Difficulty
	XPReward   int
	Deadline   *time.Time
}

func (in *CreateInput) normalize() error {
	if in.Name == "" {
		return ErrInvalidInput
	}
	if in.Type == "" {
		in.Type = entity.TypeTask
	}
	if in.Difficulty == "" {
		in.Difficulty = entity.DifficultyMedium
	}
	if !in.Type.IsValid() || !in.Difficulty.IsValid() {
		return ErrInvalidInput
	}
	if in.XPReward < 0 {
		return ErrInvalidInput
	}
	return nil
}

// Service encapsulates mission CRUD and depends on the task repo.
// Completion itself belongs to the progression orchestrator.
type Service struct {
	repo   *taskrepo.TaskRepo
	logger *zap.SugaredLogger
}

func NewService(r *taskrepo.TaskRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

// Create validates and inserts a new mission for the user.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*entity.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	t := &entity.Task{
		ID:         utilities.NewSnowflakeID(),
		UserID:     userID,
		Name:       in.Name,
		Type:       in.Type,
		Difficulty: in.Difficulty,
		XPReward:   in.XPReward,
		Deadline:   in.Deadline,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Debugw("mission created", "task_id", t.ID, "user_id", userID, "xp_reward", t.XPReward)
	return t, nil
}

// Get returns a mission owned by the user.
func (s *Service) Get(ctx context.Context, id, userID string) (*entity.Task, error) {
	t, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns the user's missions, optionally filtered.
func (s *Service) List(ctx context.Context, userID string, f taskrepo.ListFilter) ([]*entity.Task, error) {
	return s.repo.List(ctx, userID, f)
}

// Update rewrites the editable fields of an existing mission.
func (s *Service) Update(ctx context.Context, id, userID string, in CreateInput) (*entity.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	t := &entity.Task{
		ID:         id,
		UserID:     userID,
		Name:       in.Name,
		Type:       in.Type,
		Difficulty: in.Difficulty,
		XPReward:   in.XPReward,
		Deadline:   in.Deadline,
	}
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a mission owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	rows, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
