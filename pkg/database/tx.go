package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// WithTx runs fn inside a SQL transaction.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// Runner adapts a *sqlx.DB to the transaction-runner interfaces declared by
// service packages. All statements issued through the callback share one transaction.
type Runner struct {
	DB *sqlx.DB
}

func NewRunner(db *sqlx.DB) *Runner { return &Runner{DB: db} }

func (r *Runner) RunTx(ctx context.Context, fn func(ext sqlx.ExtContext) error) error {
	return WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return fn(tx)
	})
}

// IsUnavailable reports whether err looks like the database itself is unreachable,
// as opposed to a query-level failure. Handlers map this to 503 so callers can tell
// an outage apart from a bad request.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08 - Connection Exception, Class 57 - Operator Intervention
		switch pqErr.Code.Class() {
		case "08", "57":
			return true
		}
	}
	return false
}
