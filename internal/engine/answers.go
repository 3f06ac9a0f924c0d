package engine

import (
	"database/sql"
	"time"

	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// RecordAnswer logs the user's choice against the served painting and
// updates the answer counters. The served painting is resolved to a stable
// catalog id through the index fallback chain; when nothing resolves
// unambiguously the row is logged with a null id and excluded from per-item
// aggregates. The session is closed in the same transaction so a replayed
// answer button finds no session and records nothing twice. Returns whether
// the choice was correct.
func (e *Engine) RecordAnswer(userID int64, chosen string, served *models.Session, now time.Time) (bool, error) {
	correct := chosen == served.Museum

	resolved := e.catalog.Resolve(served.ItemID, served.Title, served.Artist,
		served.Year, served.Museum, served.ImageURL)

	entry := &models.AnswerLogEntry{
		UserID:    userID,
		Title:     served.Title,
		Artist:    served.Artist,
		Year:      served.Year,
		Museum:    served.Museum,
		ImageURL:  served.ImageURL,
		Chosen:    chosen,
		IsCorrect: correct,
		CreatedAt: now,
	}
	if resolved != "" {
		entry.ItemID = sql.NullString{String: resolved, Valid: true}
	}

	err := database.Tx(func(tx *sqlx.Tx) error {
		if err := e.stats.AppendAnswerTx(tx, entry); err != nil {
			return err
		}
		if resolved != "" {
			if err := e.stats.BumpCountersTx(tx, userID, resolved, correct, now); err != nil {
				return err
			}
		}
		if err := e.users.BumpStatsTx(tx, userID, correct, now); err != nil {
			return err
		}
		return e.sessions.DeleteTx(tx, userID)
	})
	if err != nil {
		return false, err
	}
	return correct, nil
}
