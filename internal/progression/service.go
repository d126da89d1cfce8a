package progression

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	taskentity "github.com/ZINSTEM/SoloGym/internal/task/entity"
	userentity "github.com/ZINSTEM/SoloGym/internal/user/entity"
)

// sentinel errors for common failure modes
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyCompleted = errors.New("task already completed")
)

// TaskStore is the slice of the task repository the orchestrator needs.
// The ext argument carries the surrounding transaction.
type TaskStore interface {
	GetForUser(ctx context.Context, ext sqlx.ExtContext, id, userID string) (*taskentity.Task, error)
	MarkCompleted(ctx context.Context, ext sqlx.ExtContext, id, userID string, at time.Time) (*taskentity.Task, error)
	CountCompleted(ctx context.Context, ext sqlx.ExtContext, userID string) (int, error)
}

// UserStore is the slice of the user repository the orchestrator needs.
type UserStore interface {
	GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id string) (*userentity.User, error)
	SaveProgress(ctx context.Context, ext sqlx.ExtContext, u *userentity.User) error
	AddBadges(ctx context.Context, ext sqlx.ExtContext, id string, badges []string) error
}

// TxRunner executes a callback inside one database transaction.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(ext sqlx.ExtContext) error) error
}

// CompleteResult is the composed outcome of a task completion.
type CompleteResult struct {
	Task      *taskentity.Task `json:"task"`
	User      *userentity.User `json:"user"`
	LeveledUp bool             `json:"leveledUp"`
	XPGained  int              `json:"xpGained"`
}

// Service orchestrates task completion: XP accrual, level-up resolution, point
// grants, badge unlocking. Everything runs in one transaction so a crash or a
// failed write never leaves XP applied without the task marked complete.
type Service struct {
	runner TxRunner
	tasks  TaskStore
	users  UserStore
	logger *zap.SugaredLogger
}

func NewService(runner TxRunner, tasks TaskStore, users UserStore, logger *zap.SugaredLogger) *Service {
	return &Service{runner: runner, tasks: tasks, users: users, logger: logger}
}

// CompleteTask applies a task-completion event for the user. The user row is
// locked first, which serializes concurrent completions per user; two racing
// requests always produce correct cumulative XP.
func (s *Service) CompleteTask(ctx context.Context, taskID, userID string) (*CompleteResult, error) {
	var result *CompleteResult

	err := s.runner.RunTx(ctx, func(ext sqlx.ExtContext) error {
		u, err := s.users.GetForUpdate(ctx, ext, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		now := time.Now().UTC()
		t, err := s.tasks.MarkCompleted(ctx, ext, taskID, userID, now)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			// The guard rejected the update: missing task or already done.
			if _, getErr := s.tasks.GetForUser(ctx, ext, taskID, userID); getErr != nil {
				if errors.Is(getErr, sql.ErrNoRows) {
					return ErrTaskNotFound
				}
				return getErr
			}
			return ErrAlreadyCompleted
		}

		outcome := Advance(Snapshot{XP: u.XP, Level: u.Level, XPToNextLevel: u.XPToNextLevel}, t.XPReward)
		u.XP = outcome.XP
		u.Level = outcome.Level
		u.XPToNextLevel = outcome.XPToNextLevel
		u.AvailablePoints += outcome.PointsGranted

		if err := s.users.SaveProgress(ctx, ext, u); err != nil {
			return err
		}

		completedCount, err := s.tasks.CountCompleted(ctx, ext, userID)
		if err != nil {
			return err
		}

		// Badges see the post-level-up state; "reach level 5" must observe the
		// level this very completion produced.
		all, added := EvaluateBadges(u.Badges, completedCount, u.Level, u.Attributes.Strength)
		if len(added) > 0 {
			if err := s.users.AddBadges(ctx, ext, userID, added); err != nil {
				return err
			}
			u.Badges = all
		}

		if outcome.LeveledUp {
			s.logger.Infow("hunter leveled up",
				"user_id", userID,
				"level", u.Level,
				"levels_gained", outcome.LevelsGained,
				"points_granted", outcome.PointsGranted,
			)
		}

		result = &CompleteResult{Task: t, User: u, LeveledUp: outcome.LeveledUp, XPGained: t.XPReward}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
