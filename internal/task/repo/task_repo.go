package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ZINSTEM/SoloGym/internal/task/entity"
)

// TaskRepo provides data access for the tasks table using sqlx.
// Every query is scoped by user_id: missions are owned exclusively.
type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo { return &TaskRepo{db: db} }

// EnsureTable creates the tasks table if not exists (idempotent).
func (r *TaskRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  name TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'task',
  difficulty TEXT NOT NULL DEFAULT 'medium',
  xp_reward INT NOT NULL DEFAULT 0,
  deadline TIMESTAMPTZ,
  completed BOOLEAN NOT NULL DEFAULT false,
  completed_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_completed ON tasks(user_id, completed);
CREATE INDEX IF NOT EXISTS idx_tasks_user_type ON tasks(user_id, type);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

type taskRow struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Name        string     `db:"name"`
	Type        string     `db:"type"`
	Difficulty  string     `db:"difficulty"`
	XPReward    int        `db:"xp_reward"`
	Deadline    *time.Time `db:"deadline"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (row *taskRow) toEntity() *entity.Task {
	return &entity.Task{
		ID:          row.ID,
		UserID:      row.UserID,
		Name:        row.Name,
		Type:        entity.Type(row.Type),
		Difficulty:  entity.Difficulty(row.Difficulty),
		XPReward:    row.XPReward,
		Deadline:    row.Deadline,
		Completed:   row.Completed,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
	}
}

const taskColumns = `id, user_id, name, type, difficulty, xp_reward, deadline, completed, completed_at, created_at`

// Create inserts a new task row.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	const q = `INSERT INTO tasks (id, user_id, name, type, difficulty, xp_reward, deadline)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING created_at`
	return r.db.QueryRowxContext(ctx, q,
		t.ID, t.UserID, t.Name, string(t.Type), string(t.Difficulty), t.XPReward, t.Deadline,
	).Scan(&t.CreatedAt)
}

// Get fetches a task owned by the user, or sql.ErrNoRows.
func (r *TaskRepo) Get(ctx context.Context, id, userID string) (*entity.Task, error) {
	return r.GetForUser(ctx, r.db, id, userID)
}

// GetForUser is Get inside a caller-supplied transaction.
func (r *TaskRepo) GetForUser(ctx context.Context, ext sqlx.ExtContext, id, userID string) (*entity.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, ext, &row, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 AND user_id=$2`, id, userID); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// ListFilter narrows List. Nil fields mean no constraint.
type ListFilter struct {
	Completed *bool
	Type      *entity.Type
}

// List returns the user's tasks newest first, optionally filtered by completion
// state and type.
func (r *TaskRepo) List(ctx context.Context, userID string, f ListFilter) ([]*entity.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1`
	args := []any{userID}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		q += ` AND completed=$2`
	}
	if f.Type != nil {
		args = append(args, string(*f.Type))
		if f.Completed != nil {
			q += ` AND type=$3`
		} else {
			q += ` AND type=$2`
		}
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Task
	for rows.Next() {
		var row taskRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		out = append(out, row.toEntity())
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a pending task. The completed flag and
// completion stamp are only writable through MarkCompleted.
func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) (*entity.Task, error) {
	var row taskRow
	const q = `UPDATE tasks SET name=$3, type=$4, difficulty=$5, xp_reward=$6, deadline=$7
		WHERE id=$1 AND user_id=$2 RETURNING ` + taskColumns
	err := r.db.GetContext(ctx, &row, q,
		t.ID, t.UserID, t.Name, string(t.Type), string(t.Difficulty), t.XPReward, t.Deadline)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// Delete removes a task owned by the user. Returns affected row count.
func (r *TaskRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkCompleted flips completed false -> true and stamps completed_at, as a
// single conditional update. sql.ErrNoRows means the task is missing, not owned,
// or already completed; the caller disambiguates with GetForUser.
func (r *TaskRepo) MarkCompleted(ctx context.Context, ext sqlx.ExtContext, id, userID string, at time.Time) (*entity.Task, error) {
	var row taskRow
	const q = `UPDATE tasks SET completed=true, completed_at=$3
		WHERE id=$1 AND user_id=$2 AND completed=false RETURNING ` + taskColumns
	if err := sqlx.GetContext(ctx, ext, &row, q, id, userID, at); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// CountCompleted returns how many of the user's tasks are completed.
func (r *TaskRepo) CountCompleted(ctx context.Context, ext sqlx.ExtContext, userID string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, ext, &n, `SELECT COUNT(*) FROM tasks WHERE user_id=$1 AND completed=true`, userID); err != nil {
		return 0, err
	}
	return n, nil
}
