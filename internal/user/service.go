package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/user/entity"
)

// sentinel errors for common failure modes
var (
	ErrNotFound           = errors.New("user not found")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrInvalidInput       = errors.New("invalid input")
)

// DefaultHistoryLimit caps attribute-history reads when the caller passes no limit.
const DefaultHistoryLimit = 30

// Store is the slice of the user repository the service needs.
type Store interface {
	Get(ctx context.Context, id string) (*entity.User, error)
	GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id string) (*entity.User, error)
	SaveAttributes(ctx context.Context, ext sqlx.ExtContext, u *entity.User) error
	UpdateDisplayName(ctx context.Context, id, displayName string) (*entity.User, error)
}

// HistoryStore appends and reads attribute snapshots.
type HistoryStore interface {
	Append(ctx context.Context, ext sqlx.ExtContext, userID string, attrs entity.Attributes, at time.Time) error
	ListRecent(ctx context.Context, userID string, limit int) ([]entity.AttributeSnapshot, error)
}

// TxRunner executes a callback inside one database transaction.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(ext sqlx.ExtContext) error) error
}

// Service carries profile reads and the attribute allocator.
type Service struct {
	runner  TxRunner
	users   Store
	history HistoryStore
	logger  *zap.SugaredLogger
}

func NewService(runner TxRunner, users Store, history HistoryStore, logger *zap.SugaredLogger) *Service {
	return &Service{runner: runner, users: users, history: history, logger: logger}
}

// Profile returns the user without credential data.
func (s *Service) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the display name.
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName string) (*entity.User, error) {
	u, err := s.users.UpdateDisplayName(ctx, userID, displayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Allocate spends available points on attributes and appends one history
// snapshot. A zero-total spend is legal and still snapshots (clients use it to
// seed the chart). Negative components are rejected outright: letting them
// through would refund points into available_points.
func (s *Service) Allocate(ctx context.Context, userID string, delta entity.AttributeDelta) (*entity.User, error) {
	if delta.HasNegative() {
		return nil, ErrInvalidInput
	}

	var updated *entity.User
	err := s.runner.RunTx(ctx, func(ext sqlx.ExtContext) error {
		u, err := s.users.GetForUpdate(ctx, ext, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		total := delta.Total()
		if total > u.AvailablePoints {
			return ErrInsufficientPoints
		}

		u.Attributes.Strength += delta.Strength
		u.Attributes.Endurance += delta.Endurance
		u.Attributes.Agility += delta.Agility
		u.Attributes.Vitality += delta.Vitality
		u.AvailablePoints -= total

		if err := s.users.SaveAttributes(ctx, ext, u); err != nil {
			return err
		}
		if err := s.history.Append(ctx, ext, userID, u.Attributes, time.Now().UTC()); err != nil {
			return err
		}

		s.logger.Debugw("attributes allocated",
			"user_id", userID,
			"spent", total,
			"remaining", u.AvailablePoints,
		)
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttributeHistory returns up to limit snapshots ordered oldest first.
func (s *Service) AttributeHistory(ctx context.Context, userID string, limit int) ([]entity.AttributeSnapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	snaps, err := s.history.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	// repo returns newest first; clients chart oldest to newest
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
	return snaps, nil
}
