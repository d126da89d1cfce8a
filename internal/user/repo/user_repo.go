package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ZINSTEM/SoloGym/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email CITEXT UNIQUE NOT NULL,
  password_hash TEXT NOT NULL,
  display_name TEXT NOT NULL DEFAULT 'Hunter',
  level INT NOT NULL DEFAULT 1,
  xp INT NOT NULL DEFAULT 0,
  xp_to_next_level INT NOT NULL DEFAULT 100,
  strength INT NOT NULL DEFAULT 0,
  endurance INT NOT NULL DEFAULT 0,
  agility INT NOT NULL DEFAULT 0,
  vitality INT NOT NULL DEFAULT 0,
  available_points INT NOT NULL DEFAULT 0,
  badges TEXT[] NOT NULL DEFAULT '{}',
  version BIGINT NOT NULL DEFAULT 1,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// userRow is the scan target; badges need pq.StringArray before they become []string.
type userRow struct {
	ID              string         `db:"id"`
	Email           string         `db:"email"`
	PasswordHash    string         `db:"password_hash"`
	DisplayName     string         `db:"display_name"`
	Level           int            `db:"level"`
	XP              int            `db:"xp"`
	XPToNextLevel   int            `db:"xp_to_next_level"`
	Strength        int            `db:"strength"`
	Endurance       int            `db:"endurance"`
	Agility         int            `db:"agility"`
	Vitality        int            `db:"vitality"`
	AvailablePoints int            `db:"available_points"`
	Badges          pq.StringArray `db:"badges"`
	Version         int64          `db:"version"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (row *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:            row.ID,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash,
		DisplayName:   row.DisplayName,
		Level:         row.Level,
		XP:            row.XP,
		XPToNextLevel: row.XPToNextLevel,
		Attributes: entity.Attributes{
			Strength:  row.Strength,
			Endurance: row.Endurance,
			Agility:   row.Agility,
			Vitality:  row.Vitality,
		},
		AvailablePoints: row.AvailablePoints,
		Badges:          []string(row.Badges),
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

const userColumns = `id, email, password_hash, display_name, level, xp, xp_to_next_level,
	strength, endurance, agility, vitality, available_points, badges, version,
	created_at, updated_at`

// Create inserts a new user row. Fresh accounts start at level 1 with the
// level-2 threshold already stored.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, password_hash, display_name, level, xp, xp_to_next_level,
			strength, endurance, agility, vitality, available_points, badges, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.Level, u.XP, u.XPToNextLevel,
		u.Attributes.Strength, u.Attributes.Endurance, u.Attributes.Agility, u.Attributes.Vitality,
		u.AvailablePoints, pq.Array(u.Badges), u.Version,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail returns a user matched by email (case-insensitive due to citext)
// or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email=$1`, email); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// Get fetches a full user row by id.
func (r *UserRepo) Get(ctx context.Context, id string) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// GetForUpdate loads a user row with a row lock so two concurrent completions
// for the same user apply their XP one after the other. Must run inside a
// transaction; outside one the lock is released immediately.
func (r *UserRepo) GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id string) (*entity.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, ext, &row, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// SaveProgress persists the leveling fields guarded by the optimistic version.
// With the row already locked FOR UPDATE the guard cannot fail; it protects
// callers that skip the lock. Returns sql.ErrNoRows on a version mismatch.
func (r *UserRepo) SaveProgress(ctx context.Context, ext sqlx.ExtContext, u *entity.User) error {
	const q = `UPDATE users SET xp=$2, level=$3, xp_to_next_level=$4, available_points=$5,
			version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$6 RETURNING version, updated_at`
	err := sqlx.GetContext(ctx, ext, &struct {
		Version   int64     `db:"version"`
		UpdatedAt time.Time `db:"updated_at"`
	}{}, q, u.ID, u.XP, u.Level, u.XPToNextLevel, u.AvailablePoints, u.Version)
	if err != nil {
		return err
	}
	u.Version++
	return nil
}

// SaveAttributes persists the four stats and the remaining point budget, same
// version guard as SaveProgress.
func (r *UserRepo) SaveAttributes(ctx context.Context, ext sqlx.ExtContext, u *entity.User) error {
	const q = `UPDATE users SET strength=$2, endurance=$3, agility=$4, vitality=$5,
			available_points=$6, version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$7 RETURNING version`
	var v int64
	err := sqlx.GetContext(ctx, ext, &v, q,
		u.ID, u.Attributes.Strength, u.Attributes.Endurance, u.Attributes.Agility,
		u.Attributes.Vitality, u.AvailablePoints, u.Version)
	if err != nil {
		return err
	}
	u.Version = v
	return nil
}

// AddBadges appends badge ids to the set. Duplicates are filtered in SQL so the
// badge set stays duplicate-free even if the evaluator is re-run.
func (r *UserRepo) AddBadges(ctx context.Context, ext sqlx.ExtContext, id string, badges []string) error {
	if len(badges) == 0 {
		return nil
	}
	const q = `UPDATE users SET badges = badges || (
			SELECT COALESCE(array_agg(b), '{}') FROM unnest($2::text[]) AS b
			WHERE NOT (b = ANY(badges))
		), updated_at=NOW()
		WHERE id=$1`
	_, err := ext.ExecContext(ctx, q, id, pq.Array(badges))
	return err
}

// UpdateDisplayName changes the profile display name.
func (r *UserRepo) UpdateDisplayName(ctx context.Context, id, displayName string) (*entity.User, error) {
	var row userRow
	const q = `UPDATE users SET display_name=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, &row, q, id, displayName); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}
