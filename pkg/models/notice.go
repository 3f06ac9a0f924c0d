package models

import "time"

// PendingNotice is one deferred "come back" summary, unique per user per day.
// Unsent rows are retried by the sweep on its next tick.
type PendingNotice struct {
	UserID    int64      `json:"user_id" db:"user_id"`
	Day       string     `json:"day" db:"day"` // Local day the notice belongs to
	NotBefore time.Time  `json:"not_before" db:"not_before"`
	SentAt    *time.Time `json:"sent_at" db:"sent_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
