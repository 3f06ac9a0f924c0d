package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/artquizbot/internal/catalog"
	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		ReviewEvery:      3,
		PrefixSlots:      0,
		TailSlots:        4,
		ReadyMinAttempts: 200,
		ReadyMinPerItem:  5,
		ReadyMinItems:    10,
		TopMistakes:      20,
	}
}

func kinds(slots []models.Slot) []models.SlotKind {
	out := make([]models.SlotKind, len(slots))
	for i, s := range slots {
		out[i] = s.Kind
	}
	return out
}

func TestPermuteDeterministic(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	first := Permute(ids, 42)
	second := Permute(ids, 42)
	assert.Equal(t, first, second)

	other := Permute(ids, 43)
	assert.NotEqual(t, first, other, "different seeds should give a different order")

	assert.ElementsMatch(t, ids, first)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, ids, "input must not be mutated")
}

func TestBuildSlotsInterleave(t *testing.T) {
	newIDs := []string{"p1", "p2", "p3", "p4", "p5"}
	slots := BuildSlots(newIDs, nil, testConfig())

	// Two new slots, then a review slot, repeating, then the review tail
	want := []models.SlotKind{
		models.SlotNew, models.SlotNew, models.SlotReview,
		models.SlotNew, models.SlotNew, models.SlotReview,
		models.SlotNew,
		models.SlotReview, models.SlotReview, models.SlotReview, models.SlotReview,
	}
	assert.Equal(t, want, kinds(slots))

	// Without a ranked list every review slot stays unbound
	for _, s := range slots {
		if s.Kind == models.SlotReview {
			assert.Empty(t, s.ItemID)
		}
	}

	var newSeen []string
	for _, s := range slots {
		if s.Kind == models.SlotNew {
			newSeen = append(newSeen, s.ItemID)
		}
	}
	assert.Equal(t, newIDs, newSeen)
}

func TestBuildSlotsBoundRoundRobin(t *testing.T) {
	newIDs := []string{"p1", "p2", "p3"}
	ranked := []string{"r1", "r2"}
	cfg := testConfig()
	cfg.PrefixSlots = 1
	cfg.TailSlots = 3

	slots := BuildSlots(newIDs, ranked, cfg)

	var reviewIDs []string
	for _, s := range slots {
		if s.Kind == models.SlotReview {
			require.NotEmpty(t, s.ItemID)
			reviewIDs = append(reviewIDs, s.ItemID)
		}
	}
	// Prefix slot, one interleaved slot, three tail slots, bound in rotation
	assert.Equal(t, []string{"r1", "r2", "r1", "r2", "r1"}, reviewIDs)

	// The prefix review slot comes before any new content
	assert.Equal(t, models.SlotReview, slots[0].Kind)
	assert.Equal(t, models.SlotNew, slots[1].Kind)
}

func TestBuildSlotsReviewEveryBelowTwo(t *testing.T) {
	newIDs := []string{"p1", "p2", "p3"}

	for _, every := range []int{0, 1} {
		cfg := testConfig()
		cfg.ReviewEvery = every
		cfg.TailSlots = 2

		slots := BuildSlots(newIDs, nil, cfg)
		want := []models.SlotKind{
			models.SlotNew, models.SlotNew, models.SlotNew,
			models.SlotReview, models.SlotReview,
		}
		assert.Equal(t, want, kinds(slots), "ReviewEvery=%d must disable interleaving", every)
	}
}

func setupDB(t *testing.T) {
	t.Helper()
	os.Setenv("DB_TYPE", "sqlite")
	os.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })
}

func loadTestCatalog(t *testing.T) *catalog.Index {
	t.Helper()
	content := `[
		{"id": "a1", "title": "Девятый вал", "artist": "Айвазовский", "year": "1850", "museum": "Русский музей", "image_url": "https://example.com/a1.jpg"},
		{"id": "b2", "title": "Грачи прилетели", "artist": "Саврасов", "year": "1871", "museum": "Третьяковская галерея", "image_url": "https://example.com/b2.jpg"},
		{"id": "c3", "title": "Последний день Помпеи", "artist": "Брюллов", "year": "1833", "museum": "Русский музей", "image_url": "https://example.com/c3.jpg"},
		{"id": "d4", "title": "Боярыня Морозова", "artist": "Суриков", "year": "1887", "museum": "Третьяковская галерея", "image_url": "https://example.com/d4.jpg"},
		{"id": "e5", "title": "Витязь на распутье", "artist": "Васнецов", "year": "1882", "museum": "Русский музей", "image_url": "https://example.com/e5.jpg"}
	]`
	path := filepath.Join(t.TempDir(), "paintings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	idx, err := catalog.Load(path)
	require.NoError(t, err)
	return idx
}

func TestEnsurePlanIdempotent(t *testing.T) {
	setupDB(t)
	idx := loadTestCatalog(t)
	gen := NewGenerator(idx, "test-secret", testConfig())

	first, err := gen.EnsurePlan("20260901")
	require.NoError(t, err)
	require.NotEmpty(t, first.Slots)

	second, err := gen.EnsurePlan("20260901")
	require.NoError(t, err)
	assert.Equal(t, first.Slots, second.Slots)
}

func TestEnsurePlanDeterministicAcrossRuns(t *testing.T) {
	idx := loadTestCatalog(t)

	// Two independent processes with the same secret and catalog must build
	// bit-identical plans for the same day
	var runs [2][]models.Slot
	for i := range runs {
		setupDB(t)
		gen := NewGenerator(idx, "shared-secret", testConfig())
		p, err := gen.EnsurePlan("20260901")
		require.NoError(t, err)
		runs[i] = p.Slots
		database.Close()
	}
	assert.Equal(t, runs[0], runs[1])
}

func TestEnsurePlanDiffersByDayAndSecret(t *testing.T) {
	setupDB(t)
	idx := loadTestCatalog(t)
	gen := NewGenerator(idx, "secret-one", testConfig())

	day1, err := gen.EnsurePlan("20260901")
	require.NoError(t, err)
	day2, err := gen.EnsurePlan("20260902")
	require.NoError(t, err)

	newOrder := func(slots []models.Slot) []string {
		var ids []string
		for _, s := range slots {
			if s.Kind == models.SlotNew {
				ids = append(ids, s.ItemID)
			}
		}
		return ids
	}
	assert.ElementsMatch(t, newOrder(day1.Slots), newOrder(day2.Slots))
	assert.NotEqual(t, newOrder(day1.Slots), newOrder(day2.Slots),
		"different days should be served in a different order")
}

func TestDayKey(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	// 23:30 UTC on Sep 1 is already Sep 2 in Moscow
	moment := time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "20260902", DayKey(moment, loc))
	assert.Equal(t, "20260901", DayKey(moment, time.UTC))
}
