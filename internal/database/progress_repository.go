package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProgressRepository handles per-user-per-day plan cursors
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// GetCursor returns the user's cursor into a day's plan, creating the row
// at zero on first access
func (r *ProgressRepository) GetCursor(userID int64, day string) (int, error) {
	_, err := DB.Exec(
		`INSERT INTO user_day_progress (user_id, day, cursor) VALUES ($1, $2, 0)
		 ON CONFLICT (user_id, day) DO NOTHING`,
		userID, day,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to init day progress: %v", err)
	}

	var cursor int
	err = DB.Get(&cursor, "SELECT cursor FROM user_day_progress WHERE user_id = $1 AND day = $2", userID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to get day cursor: %v", err)
	}
	return cursor, nil
}

// AdvanceCursor moves the cursor forward to the given position. The update
// is guarded so the cursor never moves backwards; replaying the same advance
// is a no-op. Returns whether the cursor actually moved.
func (r *ProgressRepository) AdvanceCursor(userID int64, day string, to int) (bool, error) {
	return r.AdvanceCursorTx(DB, userID, day, to)
}

// AdvanceCursorTx is AdvanceCursor running on an existing transaction
func (r *ProgressRepository) AdvanceCursorTx(q sqlx.Ext, userID int64, day string, to int) (bool, error) {
	result, err := q.Exec(
		`INSERT INTO user_day_progress (user_id, day, cursor) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, day) DO UPDATE SET cursor = excluded.cursor
		 WHERE user_day_progress.cursor < excluded.cursor`,
		userID, day, to,
	)
	if err != nil {
		return false, fmt.Errorf("failed to advance day cursor: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %v", err)
	}
	return rows > 0, nil
}
