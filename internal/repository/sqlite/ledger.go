package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/docsim/internal/db"
)

// Ledger counts credits per user per day in credit_usage. Each day is its
// own row, so the allowance resets by date alone.
type Ledger struct {
	x *sqlx.DB
}

// Used returns the credits userID spent on day.
func (l *Ledger) Used(ctx context.Context, userID, day string) (int64, error) {
	var used int64
	err := l.x.GetContext(ctx, &used, `SELECT used FROM credit_usage WHERE user_id = ? AND day = ?`, userID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, &db.Error{Op: db.OpSelect, Err: err}
	}
	return used, nil
}

// Add adds n (negative to refund) and returns the new total.
func (l *Ledger) Add(ctx context.Context, userID, day string, n int64) (int64, error) {
	tx, err := l.x.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin credits tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_usage (user_id, day, used) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, day) DO UPDATE SET used = used + excluded.used`,
		userID, day, n,
	); err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}

	var total int64
	if err := tx.GetContext(ctx, &total,
		`SELECT used FROM credit_usage WHERE user_id = ? AND day = ?`, userID, day,
	); err != nil {
		return 0, &db.Error{Op: db.OpSelect, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit credits tx: %w", err)
	}
	return total, nil
}
