package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// SessionRepository stores the painting currently shown to each user
type SessionRepository struct{}

// NewSessionRepository creates a new repository instance
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Get returns the user's open session, or nil when there is none
func (r *SessionRepository) Get(userID int64) (*models.Session, error) {
	var session models.Session
	err := DB.Get(&session,
		`SELECT user_id, item_id, title, artist, year, museum, image_url, note, updated_at
		 FROM sessions WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %v", err)
	}
	return &session, nil
}

// SaveTx replaces the user's session with the painting just delivered
func (r *SessionRepository) SaveTx(tx *sqlx.Tx, userID int64, p models.Painting, now time.Time) error {
	_, err := tx.Exec(
		`INSERT INTO sessions (user_id, item_id, title, artist, year, museum, image_url, note, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
			item_id = excluded.item_id,
			title = excluded.title,
			artist = excluded.artist,
			year = excluded.year,
			museum = excluded.museum,
			image_url = excluded.image_url,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		userID, p.ID, p.Title, p.Artist, p.Year, p.Museum, p.ImageURL, p.Note, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %v", err)
	}
	return nil
}

// DeleteTx closes the user's session. Deleting an absent session is a no-op.
func (r *SessionRepository) DeleteTx(tx *sqlx.Tx, userID int64) error {
	if _, err := tx.Exec("DELETE FROM sessions WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to delete session: %v", err)
	}
	return nil
}
