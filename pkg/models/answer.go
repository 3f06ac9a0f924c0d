package models

import (
	"database/sql"
	"time"
)

// AnswerLogEntry is one append-only answer record. ItemID is null when the
// served painting could not be resolved to a catalog id; such rows stay in
// the log but are excluded from per-item aggregates.
type AnswerLogEntry struct {
	ID        int64          `json:"id" db:"id"`
	UserID    int64          `json:"user_id" db:"user_id"`
	ItemID    sql.NullString `json:"item_id" db:"item_id"`
	Title     string         `json:"title" db:"title"`
	Artist    string         `json:"artist" db:"artist"`
	Year      string         `json:"year" db:"year"`
	Museum    string         `json:"museum" db:"museum"`
	ImageURL  string         `json:"image_url" db:"image_url"`
	Chosen    string         `json:"chosen" db:"chosen"`
	IsCorrect bool           `json:"is_correct" db:"is_correct"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
