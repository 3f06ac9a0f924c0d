package models

import "time"

// Session stores the painting currently shown to a user so the answer
// callback can be checked against it
type Session struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Title     string    `json:"title" db:"title"`
	Artist    string    `json:"artist" db:"artist"`
	Year      string    `json:"year" db:"year"`
	Museum    string    `json:"museum" db:"museum"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Note      string    `json:"note" db:"note"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
