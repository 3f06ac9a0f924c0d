package models

// Museum labels allowed in the catalog
const (
	MuseumRussian   = "Русский музей"
	MuseumTretyakov = "Третьяковская галерея"
)

// Painting represents one immutable catalog entry
type Painting struct {
	ID       string `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Artist   string `json:"artist" db:"artist"`
	Year     string `json:"year" db:"year"`
	Museum   string `json:"museum" db:"museum"` // One of the Museum* labels
	ImageURL string `json:"image_url" db:"image_url"`
	Note     string `json:"note" db:"note"` // Optional curator note shown with the verdict
}

// ValidMuseum reports whether the museum label belongs to the closed set
func ValidMuseum(museum string) bool {
	return museum == MuseumRussian || museum == MuseumTretyakov
}
