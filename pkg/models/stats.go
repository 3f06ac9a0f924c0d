package models

import "time"

// UserItemStats holds one user's answer counters for one painting
type UserItemStats struct {
	UserID        int64      `json:"user_id" db:"user_id"`
	ItemID        string     `json:"item_id" db:"item_id"`
	Attempts      int        `json:"attempts" db:"attempts"`
	Wrong         int        `json:"wrong" db:"wrong"`
	Correct       int        `json:"correct" db:"correct"`
	LastSeenCycle int64      `json:"last_seen_cycle" db:"last_seen_cycle"`
	LastSeenAt    *time.Time `json:"last_seen_at" db:"last_seen_at"`
	LastWrongAt   *time.Time `json:"last_wrong_at" db:"last_wrong_at"`
}

// GlobalItemStats holds system-wide answer counters for one painting
type GlobalItemStats struct {
	ItemID    string    `json:"item_id" db:"item_id"`
	Attempts  int       `json:"attempts" db:"attempts"`
	Wrong     int       `json:"wrong" db:"wrong"`
	Correct   int       `json:"correct" db:"correct"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WrongRate returns the mistake frequency used for review ranking
func (g GlobalItemStats) WrongRate() float64 {
	if g.Attempts == 0 {
		return 0
	}
	return float64(g.Wrong) / float64(g.Attempts)
}

// UserStats is the running total shown by /stats
type UserStats struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	Correct   int       `json:"correct" db:"correct"`
	Total     int       `json:"total" db:"total"`
	Streak    int       `json:"streak" db:"streak"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardRow is one /top entry aggregated from the answer log
type LeaderboardRow struct {
	UserID    int64  `db:"user_id"`
	Correct   int    `db:"correct"`
	Total     int    `db:"total"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}
