package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ZINSTEM/SoloGym/internal/user/entity"
)

// HistoryRepo persists append-only attribute snapshots.
type HistoryRepo struct {
	db *sqlx.DB
}

func NewHistoryRepo(db *sqlx.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// EnsureTable creates the attribute_history table if not exists (idempotent).
func (r *HistoryRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS attribute_history (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  strength INT NOT NULL DEFAULT 0,
  endurance INT NOT NULL DEFAULT 0,
  agility INT NOT NULL DEFAULT 0,
  vitality INT NOT NULL DEFAULT 0,
  recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_attribute_history_user_recorded ON attribute_history(user_id, recorded_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Append inserts one snapshot of the user's current attribute values.
func (r *HistoryRepo) Append(ctx context.Context, ext sqlx.ExtContext, userID string, attrs entity.Attributes, at time.Time) error {
	const q = `INSERT INTO attribute_history (user_id, strength, endurance, agility, vitality, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := ext.ExecContext(ctx, q, userID, attrs.Strength, attrs.Endurance, attrs.Agility, attrs.Vitality, at)
	return err
}

// ListRecent returns up to limit snapshots, newest first. The service reverses
// them so clients chart oldest to newest.
func (r *HistoryRepo) ListRecent(ctx context.Context, userID string, limit int) ([]entity.AttributeSnapshot, error) {
	const q = `SELECT id, user_id, strength, endurance, agility, vitality, recorded_at
		FROM attribute_history WHERE user_id=$1 ORDER BY recorded_at DESC LIMIT $2`
	rows, err := r.db.QueryxContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.AttributeSnapshot
	for rows.Next() {
		var s entity.AttributeSnapshot
		if err := rows.Scan(&s.ID, &s.UserID, &s.Strength, &s.Endurance, &s.Agility, &s.Vitality, &s.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
