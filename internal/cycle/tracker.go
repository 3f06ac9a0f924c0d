package cycle

import (
	"os"
	"strconv"
	"time"

	"github.com/example/artquizbot/internal/catalog"
	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/pkg/models"
)

// DefaultCooldownHours is how long a finished cycle rests before a new pass
// over the catalog starts
const DefaultCooldownHours = 24

// Tracker maintains each user's pass through the catalog. A cycle completes
// when every item of its catalog snapshot was seen once; catalog growth
// reopens a completed cycle immediately so new paintings surface without
// waiting out the cooldown.
type Tracker struct {
	catalog  *catalog.Index
	cycles   *database.CycleRepository
	cooldown time.Duration
}

// NewTracker creates a tracker over the loaded catalog
func NewTracker(idx *catalog.Index) *Tracker {
	hours := DefaultCooldownHours
	if s := os.Getenv("CYCLE_COOLDOWN_HOURS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			hours = v
		}
	}
	return &Tracker{
		catalog:  idx,
		cycles:   database.NewCycleRepository(),
		cooldown: time.Duration(hours) * time.Hour,
	}
}

// Current returns the user's cycle state, opening cycle 1 on first contact,
// absorbing catalog growth, and rolling to the next cycle once the cooldown
// after completion has passed.
func (t *Tracker) Current(userID int64, now time.Time) (*models.UserCycleState, error) {
	state, err := t.cycles.Get(userID)
	if err != nil {
		return nil, err
	}

	if state == nil {
		state = &models.UserCycleState{
			UserID:      userID,
			CycleID:     1,
			StartedAt:   now,
			CatalogSize: t.catalog.Size(),
		}
		if err := t.cycles.Create(state); err != nil {
			return nil, err
		}
		// Re-read in case a concurrent first contact won the insert
		state, err = t.cycles.Get(userID)
		if err != nil {
			return nil, err
		}
		return state, nil
	}

	changed := false

	if live := t.catalog.Size(); live > state.CatalogSize {
		state.CatalogSize = live
		state.CompletedAt = nil
		changed = true
	}

	if state.CompletedAt != nil && now.Sub(*state.CompletedAt) >= t.cooldown {
		state.CycleID++
		state.StartedAt = now
		state.CompletedAt = nil
		state.CatalogSize = t.catalog.Size()
		state.SeenCount = 0
		changed = true
	}

	if changed {
		if err := t.cycles.Update(state); err != nil {
			return nil, err
		}
	}

	return state, nil
}
