package plan

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/example/artquizbot/internal/catalog"
	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/pkg/models"
)

// DayKey formats a moment as the plan key for its calendar day
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("20060102")
}

// Generator produces the shared daily plan: one pseudorandom pass over the
// catalog with review slots woven in. The plan is created lazily on the first
// request of the day and is identical for every user.
type Generator struct {
	catalog *catalog.Index
	plans   *database.PlanRepository
	stats   *database.StatsRepository
	secret  []byte
	cfg     Config
}

// NewGenerator creates a plan generator. The secret keys the daily seed: the
// order is reproducible on this server but not predictable without it.
func NewGenerator(idx *catalog.Index, secret string, cfg Config) *Generator {
	return &Generator{
		catalog: idx,
		plans:   database.NewPlanRepository(),
		stats:   database.NewStatsRepository(),
		secret:  []byte(secret),
		cfg:     cfg,
	}
}

// EnsurePlan returns the plan for a day, generating and storing it if no one
// has yet. Concurrent first requests race on an insert-if-absent: the loser
// throws its plan away and re-reads the winner's.
func (g *Generator) EnsurePlan(day string) (*models.DailyPlan, error) {
	existing, err := g.plans.Get(day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	slots, err := g.build(day)
	if err != nil {
		return nil, err
	}

	won, err := g.plans.InsertIfAbsent(day, slots)
	if err != nil {
		return nil, err
	}
	if !won {
		log.Printf("Plan for day %s was created concurrently, using stored plan", day)
	}

	stored, err := g.plans.Get(day)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("plan for day %s missing after insert", day)
	}
	return stored, nil
}

// build assembles the slot sequence from a snapshot of aggregate state.
// Aggregates are read here once; the stored plan never changes mid-day.
func (g *Generator) build(day string) ([]models.Slot, error) {
	newIDs := Permute(g.catalog.IDs(), daySeed(g.secret, day))

	var ranked []string
	totalAttempts, qualified, err := g.stats.GlobalReadiness(g.cfg.ReadyMinPerItem)
	if err != nil {
		return nil, err
	}
	ready := totalAttempts >= g.cfg.ReadyMinAttempts && qualified >= g.cfg.ReadyMinItems
	if ready {
		ranked, err = g.stats.GlobalRankedMistakes(g.cfg.ReadyMinPerItem, g.cfg.TopMistakes)
		if err != nil {
			return nil, err
		}
		ranked = Permute(ranked, daySeed(g.secret, day+"#review"))
	}

	return BuildSlots(newIDs, ranked, g.cfg), nil
}

// daySeed derives the deterministic seed for a day from the server secret
func daySeed(secret []byte, day string) int64 {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(day))
	sum := mac.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Permute returns a seeded pseudorandom permutation of ids
func Permute(ids []string, seed int64) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// BuildSlots assembles the day's slot sequence: optional review prefix, the
// new-item permutation with a review slot after every ReviewEvery-1 new
// slots, then a review-only tail. Review slots bind round-robin to the
// ranked list when it is non-empty, otherwise they stay unbound and resolve
// per user at peek time.
func BuildSlots(newIDs, ranked []string, cfg Config) []models.Slot {
	var slots []models.Slot
	reviewIdx := 0

	reviewSlot := func() models.Slot {
		slot := models.Slot{Kind: models.SlotReview}
		if len(ranked) > 0 {
			slot.ItemID = ranked[reviewIdx%len(ranked)]
			reviewIdx++
		}
		return slot
	}

	for i := 0; i < cfg.PrefixSlots; i++ {
		slots = append(slots, reviewSlot())
	}

	sinceReview := 0
	for _, id := range newIDs {
		slots = append(slots, models.Slot{Kind: models.SlotNew, ItemID: id})
		sinceReview++
		if cfg.ReviewEvery > 1 && sinceReview == cfg.ReviewEvery-1 {
			slots = append(slots, reviewSlot())
			sinceReview = 0
		}
	}

	for i := 0; i < cfg.TailSlots; i++ {
		slots = append(slots, reviewSlot())
	}

	return slots
}
