package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// UserRepository handles user records and their running stats
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Ensure inserts the user on first contact; later contacts refresh the name
// fields so leaderboards stay current
func (r *UserRepository) Ensure(user *models.User) error {
	_, err := DB.Exec(
		`INSERT INTO users (user_id, username, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name`,
		user.ID, user.Username, user.FirstName, user.LastName, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %v", err)
	}
	return nil
}

// GetStats returns the user's running answer totals, or nil if the user has
// not answered yet
func (r *UserRepository) GetStats(userID int64) (*models.UserStats, error) {
	var stats models.UserStats
	err := DB.Get(&stats,
		"SELECT user_id, correct, total, streak, updated_at FROM user_stats WHERE user_id = $1",
		userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %v", err)
	}
	return &stats, nil
}

// BumpStatsTx applies one answer to the user's running totals. A wrong
// answer resets the streak.
func (r *UserRepository) BumpStatsTx(tx *sqlx.Tx, userID int64, correct bool, now time.Time) error {
	right := 0
	if correct {
		right = 1
	}
	var query string
	if correct {
		query = `INSERT INTO user_stats (user_id, correct, total, streak, updated_at)
			 VALUES ($1, $2, 1, 1, $3)
			 ON CONFLICT (user_id) DO UPDATE SET
				correct = user_stats.correct + 1,
				total = user_stats.total + 1,
				streak = user_stats.streak + 1,
				updated_at = excluded.updated_at`
	} else {
		query = `INSERT INTO user_stats (user_id, correct, total, streak, updated_at)
			 VALUES ($1, $2, 1, 0, $3)
			 ON CONFLICT (user_id) DO UPDATE SET
				total = user_stats.total + 1,
				streak = 0,
				updated_at = excluded.updated_at`
	}
	if _, err := tx.Exec(query, userID, right, now); err != nil {
		return fmt.Errorf("failed to bump user stats: %v", err)
	}
	return nil
}
