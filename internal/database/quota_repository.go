package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// QuotaRepository handles the per-user daily delivery counter
type QuotaRepository struct{}

// NewQuotaRepository creates a new repository instance
func NewQuotaRepository() *QuotaRepository {
	return &QuotaRepository{}
}

// Used returns how many paintings the user already received on the given day
func (r *QuotaRepository) Used(userID int64, day string) (int, error) {
	var used int
	err := DB.Get(&used, "SELECT used FROM daily_quota WHERE user_id = $1 AND day = $2", userID, day)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get daily quota: %v", err)
	}
	return used, nil
}

// IncrementTx adds one delivery to the user's daily counter
func (r *QuotaRepository) IncrementTx(tx *sqlx.Tx, userID int64, day string) error {
	_, err := tx.Exec(
		`INSERT INTO daily_quota (user_id, day, used) VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, day) DO UPDATE SET used = daily_quota.used + 1`,
		userID, day,
	)
	if err != nil {
		return fmt.Errorf("failed to increment daily quota: %v", err)
	}
	return nil
}
