package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StatsRepository handles per-user and global answer counters plus the
// append-only answer log
type StatsRepository struct{}

// NewStatsRepository creates a new repository instance
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// GetUserItem returns a user's counters for one painting, or nil if the user
// never interacted with it
func (r *StatsRepository) GetUserItem(userID int64, itemID string) (*models.UserItemStats, error) {
	var stats models.UserItemStats
	err := DB.Get(&stats,
		`SELECT user_id, item_id, attempts, wrong, correct, last_seen_cycle, last_seen_at, last_wrong_at
		 FROM user_item_stats WHERE user_id = $1 AND item_id = $2`,
		userID, itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user item stats: %v", err)
	}
	return &stats, nil
}

// UserRankedMistakes returns the ids of the paintings the user gets wrong
// most often, worst first. Only items with at least one attempt qualify, so
// a review slot resolved from this list never introduces unseen content.
func (r *StatsRepository) UserRankedMistakes(userID int64, limit int) ([]string, error) {
	var ids []string
	err := DB.Select(&ids,
		`SELECT item_id FROM user_item_stats
		 WHERE user_id = $1 AND attempts > 0
		 ORDER BY CAST(wrong AS REAL) / attempts DESC, attempts DESC, item_id ASC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user mistake ranking: %v", err)
	}
	return ids, nil
}

// GlobalReadiness returns the total attempt count and the number of items
// with at least minPerItem attempts
func (r *StatsRepository) GlobalReadiness(minPerItem int) (totalAttempts, qualifiedItems int, err error) {
	err = DB.Get(&totalAttempts, "SELECT COALESCE(SUM(attempts), 0) FROM global_item_stats")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get global attempt total: %v", err)
	}
	err = DB.Get(&qualifiedItems,
		"SELECT COUNT(*) FROM global_item_stats WHERE attempts >= $1", minPerItem)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count qualified items: %v", err)
	}
	return totalAttempts, qualifiedItems, nil
}

// GlobalRankedMistakes returns the system-wide worst-answered painting ids,
// restricted to items with at least minAttempts attempts
func (r *StatsRepository) GlobalRankedMistakes(minAttempts, limit int) ([]string, error) {
	var ids []string
	err := DB.Select(&ids,
		`SELECT item_id FROM global_item_stats
		 WHERE attempts >= $1
		 ORDER BY CAST(wrong AS REAL) / attempts DESC, attempts DESC, item_id ASC
		 LIMIT $2`,
		minAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get global mistake ranking: %v", err)
	}
	return ids, nil
}

// AppendAnswerTx appends one row to the answer log
func (r *StatsRepository) AppendAnswerTx(tx *sqlx.Tx, entry *models.AnswerLogEntry) error {
	_, err := tx.Exec(
		`INSERT INTO answers (user_id, item_id, title, artist, year, museum, image_url, chosen, is_correct, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.UserID, entry.ItemID, entry.Title, entry.Artist, entry.Year,
		entry.Museum, entry.ImageURL, entry.Chosen, entry.IsCorrect, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append answer: %v", err)
	}
	return nil
}

// BumpCountersTx applies one answer to the per-user and global counters
// with insert-or-increment upserts
func (r *StatsRepository) BumpCountersTx(tx *sqlx.Tx, userID int64, itemID string, correct bool, now time.Time) error {
	wrong, right := 1, 0
	if correct {
		wrong, right = 0, 1
	}
	var lastWrong *time.Time
	if !correct {
		lastWrong = &now
	}

	_, err := tx.Exec(
		`INSERT INTO user_item_stats (user_id, item_id, attempts, wrong, correct, last_wrong_at)
		 VALUES ($1, $2, 1, $3, $4, $5)
		 ON CONFLICT (user_id, item_id) DO UPDATE SET
			attempts = user_item_stats.attempts + 1,
			wrong = user_item_stats.wrong + excluded.wrong,
			correct = user_item_stats.correct + excluded.correct,
			last_wrong_at = COALESCE(excluded.last_wrong_at, user_item_stats.last_wrong_at)`,
		userID, itemID, wrong, right, lastWrong,
	)
	if err != nil {
		return fmt.Errorf("failed to bump user item stats: %v", err)
	}

	_, err = tx.Exec(
		`INSERT INTO global_item_stats (item_id, attempts, wrong, correct, updated_at)
		 VALUES ($1, 1, $2, $3, $4)
		 ON CONFLICT (item_id) DO UPDATE SET
			attempts = global_item_stats.attempts + 1,
			wrong = global_item_stats.wrong + excluded.wrong,
			correct = global_item_stats.correct + excluded.correct,
			updated_at = excluded.updated_at`,
		itemID, wrong, right, now,
	)
	if err != nil {
		return fmt.Errorf("failed to bump global item stats: %v", err)
	}
	return nil
}

// OverwriteCountersTx replaces the aggregate counters for one key with
// recomputed values. Seen-tracking fields are left alone: they belong to the
// cycle tracker, not the answer log.
func (r *StatsRepository) OverwriteCountersTx(tx *sqlx.Tx, stats *models.UserItemStats) error {
	_, err := tx.Exec(
		`INSERT INTO user_item_stats (user_id, item_id, attempts, wrong, correct, last_wrong_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, item_id) DO UPDATE SET
			attempts = excluded.attempts,
			wrong = excluded.wrong,
			correct = excluded.correct,
			last_wrong_at = excluded.last_wrong_at`,
		stats.UserID, stats.ItemID, stats.Attempts, stats.Wrong, stats.Correct, stats.LastWrongAt,
	)
	if err != nil {
		return fmt.Errorf("failed to overwrite user item stats: %v", err)
	}
	return nil
}

// OverwriteGlobalTx replaces the global counters for one item with
// recomputed values
func (r *StatsRepository) OverwriteGlobalTx(tx *sqlx.Tx, stats *models.GlobalItemStats) error {
	_, err := tx.Exec(
		`INSERT INTO global_item_stats (item_id, attempts, wrong, correct, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (item_id) DO UPDATE SET
			attempts = excluded.attempts,
			wrong = excluded.wrong,
			correct = excluded.correct,
			updated_at = excluded.updated_at`,
		stats.ItemID, stats.Attempts, stats.Wrong, stats.Correct, stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to overwrite global item stats: %v", err)
	}
	return nil
}

// AllAnswers returns the full answer log in insertion order
func (r *StatsRepository) AllAnswers() ([]models.AnswerLogEntry, error) {
	var entries []models.AnswerLogEntry
	err := DB.Select(&entries,
		`SELECT id, user_id, item_id, title, artist, year, museum, image_url, chosen, is_correct, created_at
		 FROM answers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer log: %v", err)
	}
	return entries, nil
}

// Leaderboard aggregates the answer log since the given time, best accuracy
// first
func (r *StatsRepository) Leaderboard(since time.Time, limit int) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := DB.Select(&rows,
		`SELECT a.user_id,
			SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END) AS correct,
			COUNT(*) AS total,
			COALESCE(u.username, '') AS username,
			COALESCE(u.first_name, '') AS first_name,
			COALESCE(u.last_name, '') AS last_name
		 FROM answers a
		 LEFT JOIN users u ON u.user_id = a.user_id
		 WHERE a.created_at >= $1
		 GROUP BY a.user_id, u.username, u.first_name, u.last_name
		 ORDER BY CAST(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END) AS REAL) / COUNT(*) DESC,
			correct DESC, total ASC
		 LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %v", err)
	}
	return rows, nil
}
