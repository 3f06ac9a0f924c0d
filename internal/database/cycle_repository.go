package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// CycleRepository handles per-user cycle state rows
type CycleRepository struct{}

// NewCycleRepository creates a new repository instance
func NewCycleRepository() *CycleRepository {
	return &CycleRepository{}
}

// Get returns the user's cycle state, or nil when the user has none yet
func (r *CycleRepository) Get(userID int64) (*models.UserCycleState, error) {
	var state models.UserCycleState
	err := DB.Get(&state,
		`SELECT user_id, cycle_id, started_at, completed_at, catalog_size, seen_count
		 FROM user_cycles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle state: %v", err)
	}
	return &state, nil
}

// Create opens the user's first cycle
func (r *CycleRepository) Create(state *models.UserCycleState) error {
	_, err := DB.Exec(
		`INSERT INTO user_cycles (user_id, cycle_id, started_at, completed_at, catalog_size, seen_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO NOTHING`,
		state.UserID, state.CycleID, state.StartedAt, state.CompletedAt,
		state.CatalogSize, state.SeenCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create cycle state: %v", err)
	}
	return nil
}

// Update overwrites the user's cycle row
func (r *CycleRepository) Update(state *models.UserCycleState) error {
	_, err := DB.Exec(
		`UPDATE user_cycles SET cycle_id = $1, started_at = $2, completed_at = $3,
		 catalog_size = $4, seen_count = $5 WHERE user_id = $6`,
		state.CycleID, state.StartedAt, state.CompletedAt,
		state.CatalogSize, state.SeenCount, state.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cycle state: %v", err)
	}
	return nil
}

// MarkSeenTx records that the user saw the item in the given cycle. If this
// is the item's first appearance in the cycle, the cycle's seen counter is
// incremented, and the cycle is completed once every snapshot item was seen.
// Runs inside the commit transaction of the delivery reconciler.
func (r *CycleRepository) MarkSeenTx(tx *sqlx.Tx, userID int64, itemID string, cycleID int64, now time.Time) error {
	var lastSeenCycle int64
	err := tx.Get(&lastSeenCycle,
		"SELECT last_seen_cycle FROM user_item_stats WHERE user_id = $1 AND item_id = $2",
		userID, itemID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to get item seen state: %v", err)
	}

	_, err = tx.Exec(
		`INSERT INTO user_item_stats (user_id, item_id, last_seen_cycle, last_seen_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, item_id) DO UPDATE SET
			last_seen_cycle = excluded.last_seen_cycle,
			last_seen_at = excluded.last_seen_at`,
		userID, itemID, cycleID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to mark item seen: %v", err)
	}

	if lastSeenCycle == cycleID {
		// Already counted for this cycle
		return nil
	}

	_, err = tx.Exec(
		"UPDATE user_cycles SET seen_count = seen_count + 1 WHERE user_id = $1 AND cycle_id = $2",
		userID, cycleID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment seen count: %v", err)
	}

	_, err = tx.Exec(
		`UPDATE user_cycles SET completed_at = $1
		 WHERE user_id = $2 AND cycle_id = $3 AND completed_at IS NULL AND seen_count >= catalog_size`,
		now, userID, cycleID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete cycle: %v", err)
	}
	return nil
}
