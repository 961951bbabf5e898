package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

// DefaultRefreshLogSize is how many attempts the log keeps.
const DefaultRefreshLogSize = 20

// RefreshAttempt is one logged refresh outcome.
type RefreshAttempt struct {
	ID          string
	Succeeded   bool
	ExpiresIn   int64
	Error       string
	AttemptedAt time.Time
}

// RefreshLogRepository records refresh outcomes, pruning to the newest entries.
type RefreshLogRepository struct {
	db   *sql.DB
	keep int
	now  func() time.Time
}

// NewRefreshLogRepository keeps at most keep entries (defaults to [DefaultRefreshLogSize]).
func NewRefreshLogRepository(db *sql.DB, keep int) *RefreshLogRepository {
	if keep <= 0 {
		keep = DefaultRefreshLogSize
	}
	return &RefreshLogRepository{db: db, keep: keep, now: time.Now}
}

// RecordRefresh stores the outcome of one refresh attempt.
func (r *RefreshLogRepository) RecordRefresh(ctx context.Context, expiresIn int64, refreshErr error) error {
	attempt := RefreshAttempt{Succeeded: refreshErr == nil, ExpiresIn: expiresIn}
	if refreshErr != nil {
		attempt.Error = models.Truncate(refreshErr.Error(), models.MaxErrorMessageLen)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO refresh_log (id, succeeded, expires_in, error, attempted_at)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, shared.GenerateID(), attempt.Succeeded, attempt.ExpiresIn, attempt.Error, r.now().UTC()); err != nil {
			return fmt.Errorf("failed to insert refresh attempt: %w", err)
		}

		prune := `
			DELETE FROM refresh_log
			WHERE id NOT IN (
				SELECT id FROM refresh_log ORDER BY attempted_at DESC, rowid DESC LIMIT ?
			)
		`
		if _, err := tx.ExecContext(ctx, prune, r.keep); err != nil {
			return fmt.Errorf("failed to prune refresh log: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit attempts, newest first.
func (r *RefreshLogRepository) Recent(limit int) ([]RefreshAttempt, error) {
	query := `
		SELECT id, succeeded, expires_in, error, attempted_at
		FROM refresh_log
		ORDER BY attempted_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh attempts: %w", err)
	}
	defer rows.Close()

	var attempts []RefreshAttempt
	for rows.Next() {
		var a RefreshAttempt
		if err := rows.Scan(&a.ID, &a.Succeeded, &a.ExpiresIn, &a.Error, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan refresh attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh attempts: %w", err)
	}
	return attempts, nil
}
