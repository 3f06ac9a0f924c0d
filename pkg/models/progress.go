package models

import "time"

// UserDayProgress is a user's cursor into one day's shared plan.
// The cursor only moves forward, and only through commit or skip.
type UserDayProgress struct {
	UserID int64  `json:"user_id" db:"user_id"`
	Day    string `json:"day" db:"day"`
	Cursor int    `json:"cursor" db:"cursor"`
}

// UserCycleState tracks a user's pass through the catalog
type UserCycleState struct {
	UserID      int64      `json:"user_id" db:"user_id"`
	CycleID     int64      `json:"cycle_id" db:"cycle_id"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	CatalogSize int        `json:"catalog_size" db:"catalog_size"` // Catalog size snapshot for this cycle
	SeenCount   int        `json:"seen_count" db:"seen_count"`
}
