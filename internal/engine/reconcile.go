package engine

import (
	"fmt"
	"time"

	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Commit finalizes a delivered candidate in one transaction: the cursor
// advances past the slot, the item is marked seen for the cycle, the daily
// quota grows, and the session now points at the delivered painting. Call it
// only after the external delivery succeeded. Replays are no-ops: when the
// guarded cursor advance finds nothing to do, the rest is skipped too.
func (e *Engine) Commit(c *models.PendingCandidate, now time.Time) error {
	painting, ok := e.catalog.Get(c.ItemID)
	if !ok {
		return fmt.Errorf("candidate item %s not in catalog", c.ItemID)
	}

	return database.Tx(func(tx *sqlx.Tx) error {
		advanced, err := e.progress.AdvanceCursorTx(tx, c.UserID, c.Day, c.NextCursor)
		if err != nil {
			return err
		}
		if !advanced {
			// Already committed or skipped with this candidate
			return nil
		}
		if err := e.cycles.MarkSeenTx(tx, c.UserID, c.ItemID, c.CycleID, now); err != nil {
			return err
		}
		if err := e.quota.IncrementTx(tx, c.UserID, c.Day); err != nil {
			return err
		}
		return e.sessions.SaveTx(tx, c.UserID, painting, now)
	})
}

// Skip abandons a candidate whose delivery failed. Only the cursor moves, so
// the dead slot is never retried yet never counts as seen or against the
// quota. Replaying a skip is a no-op.
func (e *Engine) Skip(c *models.PendingCandidate) error {
	_, err := e.progress.AdvanceCursor(c.UserID, c.Day, c.NextCursor)
	return err
}

// QuotaUsed returns how many paintings the user received on the given day
func (e *Engine) QuotaUsed(userID int64, day string) (int, error) {
	return e.quota.Used(userID, day)
}

// Session returns the user's open question, if any
func (e *Engine) Session(userID int64) (*models.Session, error) {
	return e.sessions.Get(userID)
}
