package engine

import (
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"time"

	"github.com/example/artquizbot/internal/catalog"
	"github.com/example/artquizbot/internal/cycle"
	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/internal/plan"
	"github.com/example/artquizbot/pkg/models"
)

const (
	// DefaultScanWindow caps how many plan slots one peek may walk
	DefaultScanWindow = 50
	// DefaultReviewListSize bounds the per-user ranked list unbound review
	// slots resolve against
	DefaultReviewListSize = 20
)

// Engine walks the shared daily plan for individual users and reconciles
// their progress with delivery outcomes. A peek is read-only with respect to
// progress; only Commit and Skip move the cursor.
type Engine struct {
	catalog  *catalog.Index
	plans    *plan.Generator
	tracker  *cycle.Tracker
	progress *database.ProgressRepository
	cycles   *database.CycleRepository
	stats    *database.StatsRepository
	quota    *database.QuotaRepository
	sessions *database.SessionRepository
	users    *database.UserRepository
	meta     *database.MetaRepository
	loc      *time.Location

	scanWindow     int
	reviewListSize int
}

// New creates the scheduling engine
func New(idx *catalog.Index, plans *plan.Generator, tracker *cycle.Tracker, loc *time.Location) *Engine {
	e := &Engine{
		catalog:        idx,
		plans:          plans,
		tracker:        tracker,
		progress:       database.NewProgressRepository(),
		cycles:         database.NewCycleRepository(),
		stats:          database.NewStatsRepository(),
		quota:          database.NewQuotaRepository(),
		sessions:       database.NewSessionRepository(),
		users:          database.NewUserRepository(),
		meta:           database.NewMetaRepository(),
		loc:            loc,
		scanWindow:     DefaultScanWindow,
		reviewListSize: DefaultReviewListSize,
	}
	if s := os.Getenv("PEEK_SCAN_WINDOW"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			e.scanWindow = v
		}
	}
	return e
}

// DayKey returns the plan key for the engine's local day at the given moment
func (e *Engine) DayKey(now time.Time) string {
	return plan.DayKey(now, e.loc)
}

// Location returns the engine's local timezone
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Peek resolves the next deliverable candidate for a user without committing
// anything. It scans today's plan forward from the user's cursor, skipping
// new slots already seen this cycle and review slots the user has no history
// for. When the whole window is dead, the cursor is parked at the scan
// boundary so the next call does not re-walk it, and nil is returned.
func (e *Engine) Peek(userID int64, now time.Time) (*models.PendingCandidate, error) {
	day := e.DayKey(now)

	dailyPlan, err := e.plans.EnsurePlan(day)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure daily plan: %v", err)
	}

	cursor, err := e.progress.GetCursor(userID, day)
	if err != nil {
		return nil, err
	}

	state, err := e.tracker.Current(userID, now)
	if err != nil {
		return nil, err
	}

	var userRanked []string
	rankedLoaded := false

	end := cursor + e.scanWindow
	if end > len(dailyPlan.Slots) {
		end = len(dailyPlan.Slots)
	}

	for i := cursor; i < end; i++ {
		slot := dailyPlan.Slots[i]

		switch slot.Kind {
		case models.SlotNew:
			seen, err := e.seenThisCycle(userID, slot.ItemID, state.CycleID)
			if err != nil {
				return nil, err
			}
			if seen {
				continue
			}
			if _, ok := e.catalog.Get(slot.ItemID); !ok {
				continue
			}
			return &models.PendingCandidate{
				UserID:     userID,
				Day:        day,
				SlotIndex:  i,
				NextCursor: i + 1,
				CycleID:    state.CycleID,
				Kind:       models.SlotNew,
				ItemID:     slot.ItemID,
			}, nil

		case models.SlotReview:
			itemID := slot.ItemID
			if itemID == "" {
				// Unbound slot: resolve against the user's own worst items
				if !rankedLoaded {
					userRanked, err = e.stats.UserRankedMistakes(userID, e.reviewListSize)
					if err != nil {
						return nil, err
					}
					rankedLoaded = true
				}
				if len(userRanked) == 0 {
					continue
				}
				itemID = userRanked[reviewPick(day, userID, i, len(userRanked))]
			} else {
				// Bound slot: review never introduces unseen content
				stats, err := e.stats.GetUserItem(userID, itemID)
				if err != nil {
					return nil, err
				}
				if stats == nil || stats.Attempts == 0 {
					continue
				}
			}
			if _, ok := e.catalog.Get(itemID); !ok {
				continue
			}
			return &models.PendingCandidate{
				UserID:     userID,
				Day:        day,
				SlotIndex:  i,
				NextCursor: i + 1,
				CycleID:    state.CycleID,
				Kind:       models.SlotReview,
				ItemID:     itemID,
			}, nil
		}
	}

	// Nothing usable in the window: park the cursor at the boundary
	if end > cursor {
		if _, err := e.progress.AdvanceCursor(userID, day, end); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (e *Engine) seenThisCycle(userID int64, itemID string, cycleID int64) (bool, error) {
	stats, err := e.stats.GetUserItem(userID, itemID)
	if err != nil {
		return false, err
	}
	return stats != nil && stats.LastSeenCycle == cycleID, nil
}

// reviewPick derives a stable index into the user's ranked list for an
// unbound review slot, so retries of the same slot resolve the same item
func reviewPick(day string, userID int64, slotIndex, listLen int) int {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", day, userID, slotIndex)
	return int(h.Sum64() % uint64(listLen))
}
