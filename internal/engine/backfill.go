package engine

import (
	"log"

	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const backfillFlag = "aggregates_backfilled"

type userItemKey struct {
	userID int64
	itemID string
}

// RunBackfillOnce recomputes the per-user and global answer counters from
// the full answer log. It runs at most once over the service's lifetime,
// guarded by a persisted flag. Legacy log rows without an id are resolved
// through the catalog index; rows that stay ambiguous are left out of the
// aggregates but remain in the log. Each recomputed key is fully
// overwritten, so partially populated aggregate tables are safe.
func (e *Engine) RunBackfillOnce() error {
	done, err := e.meta.Get(backfillFlag)
	if err != nil {
		return err
	}
	if done == "1" {
		return nil
	}

	entries, err := e.stats.AllAnswers()
	if err != nil {
		return err
	}

	perUser := make(map[userItemKey]*models.UserItemStats)
	global := make(map[string]*models.GlobalItemStats)
	var skipped int

	for _, entry := range entries {
		id := entry.ItemID.String
		if !entry.ItemID.Valid {
			id = ""
		}
		resolved := e.catalog.Resolve(id, entry.Title, entry.Artist, entry.Year, entry.Museum, entry.ImageURL)
		if resolved == "" {
			skipped++
			continue
		}

		key := userItemKey{userID: entry.UserID, itemID: resolved}
		us := perUser[key]
		if us == nil {
			us = &models.UserItemStats{UserID: entry.UserID, ItemID: resolved}
			perUser[key] = us
		}
		gs := global[resolved]
		if gs == nil {
			gs = &models.GlobalItemStats{ItemID: resolved}
			global[resolved] = gs
		}

		us.Attempts++
		gs.Attempts++
		if entry.IsCorrect {
			us.Correct++
			gs.Correct++
		} else {
			us.Wrong++
			gs.Wrong++
			t := entry.CreatedAt
			us.LastWrongAt = &t
		}
		gs.UpdatedAt = entry.CreatedAt
	}

	err = database.Tx(func(tx *sqlx.Tx) error {
		for _, us := range perUser {
			if err := e.stats.OverwriteCountersTx(tx, us); err != nil {
				return err
			}
		}
		for _, gs := range global {
			if err := e.stats.OverwriteGlobalTx(tx, gs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := e.meta.Set(backfillFlag, "1"); err != nil {
		return err
	}

	log.Printf("Backfill done: %d log rows, %d user-item keys, %d items, %d unresolved rows skipped",
		len(entries), len(perUser), len(global), skipped)
	return nil
}
