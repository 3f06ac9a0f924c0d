package models

import "time"

// SlotKind tags a position in the shared daily plan
type SlotKind string

const (
	// SlotNew serves the next unseen painting of the user's cycle
	SlotNew SlotKind = "new"
	// SlotReview resurfaces a painting the user answered before
	SlotReview SlotKind = "review"
)

// Slot is one position in a day's plan. A review slot may carry a bound
// painting id from the global ranked-mistake list; an empty id means the
// slot resolves against the user's own history at peek time.
type Slot struct {
	Kind   SlotKind `json:"kind"`
	ItemID string   `json:"item_id,omitempty"`
}

// DailyPlan is the ordered slot sequence shared by all users on one day
type DailyPlan struct {
	Day       string    `json:"day" db:"day"` // YYYYMMDD in the configured timezone
	Slots     []Slot    `json:"slots"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
