package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/artquizbot/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	os.Setenv("DB_TYPE", "sqlite")
	os.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, Connect())
	t.Cleanup(func() { Close() })
}

func TestAnswersIDColumnPerDriver(t *testing.T) {
	// AUTOINCREMENT is sqlite-only syntax; postgres needs its serial type
	assert.Equal(t, "id INTEGER PRIMARY KEY AUTOINCREMENT", answersIDColumn("sqlite3"))
	assert.Equal(t, "id BIGSERIAL PRIMARY KEY", answersIDColumn("postgres"))
}

func TestSessionSaveAndDelete(t *testing.T) {
	setupDB(t)
	repo := NewSessionRepository()
	now := time.Now()

	p := models.Painting{ID: "a1", Title: "Девятый вал", Artist: "Айвазовский",
		Year: "1850", Museum: models.MuseumRussian, ImageURL: "https://example.com/a1.jpg"}
	require.NoError(t, Tx(func(tx *sqlx.Tx) error {
		return repo.SaveTx(tx, 7, p, now)
	}))

	session, err := repo.Get(7)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "a1", session.ItemID)

	require.NoError(t, Tx(func(tx *sqlx.Tx) error {
		return repo.DeleteTx(tx, 7)
	}))
	// Deleting again is a no-op
	require.NoError(t, Tx(func(tx *sqlx.Tx) error {
		return repo.DeleteTx(tx, 7)
	}))

	session, err = repo.Get(7)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCursorNeverMovesBackwards(t *testing.T) {
	setupDB(t)
	repo := NewProgressRepository()

	cursor, err := repo.GetCursor(7, "20260901")
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	moved, err := repo.AdvanceCursor(7, "20260901", 3)
	require.NoError(t, err)
	assert.True(t, moved)

	// Replays and stale advances do nothing
	moved, err = repo.AdvanceCursor(7, "20260901", 3)
	require.NoError(t, err)
	assert.False(t, moved)
	moved, err = repo.AdvanceCursor(7, "20260901", 1)
	require.NoError(t, err)
	assert.False(t, moved)

	cursor, err = repo.GetCursor(7, "20260901")
	require.NoError(t, err)
	assert.Equal(t, 3, cursor)

	// Another day starts over
	cursor, err = repo.GetCursor(7, "20260902")
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)
}

func TestPlanInsertIfAbsent(t *testing.T) {
	setupDB(t)
	repo := NewPlanRepository()

	missing, err := repo.Get("20260901")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := []models.Slot{
		{Kind: models.SlotNew, ItemID: "a1"},
		{Kind: models.SlotReview, ItemID: ""},
	}
	won, err := repo.InsertIfAbsent("20260901", first)
	require.NoError(t, err)
	assert.True(t, won)

	// A concurrent writer with a different plan loses the race
	won, err = repo.InsertIfAbsent("20260901", []models.Slot{{Kind: models.SlotNew, ItemID: "b2"}})
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := repo.Get("20260901")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first, stored.Slots)
}

func TestNoticeQueueLifecycle(t *testing.T) {
	setupDB(t)
	repo := NewNoticeRepository()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.EnqueueIfAbsent(7, "20260901", now.Add(-time.Hour)))
	require.NoError(t, repo.EnqueueIfAbsent(8, "20260901", now.Add(time.Hour)))
	// Duplicate enqueue for the same user and day is dropped
	require.NoError(t, repo.EnqueueIfAbsent(7, "20260901", now.Add(-2*time.Hour)))

	due, err := repo.Due(now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1, "only notices past their time are due")
	assert.Equal(t, int64(7), due[0].UserID)

	require.NoError(t, repo.MarkSent(7, "20260901", now))

	due, err = repo.Due(now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	// The future notice becomes due later
	due, err = repo.Due(now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(8), due[0].UserID)
}

func TestNoticeDueBatchIsBounded(t *testing.T) {
	setupDB(t)
	repo := NewNoticeRepository()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.EnqueueIfAbsent(i, "20260901", now.Add(-time.Duration(i)*time.Minute)))
	}

	due, err := repo.Due(now, 2)
	require.NoError(t, err)
	require.Len(t, due, 2)
	// Oldest first
	assert.Equal(t, int64(5), due[0].UserID)
	assert.Equal(t, int64(4), due[1].UserID)
}

func TestQuotaIncrement(t *testing.T) {
	setupDB(t)
	repo := NewQuotaRepository()

	used, err := repo.Used(7, "20260901")
	require.NoError(t, err)
	assert.Equal(t, 0, used)

	for i := 0; i < 3; i++ {
		require.NoError(t, Tx(func(tx *sqlx.Tx) error {
			return repo.IncrementTx(tx, 7, "20260901")
		}))
	}

	used, err = repo.Used(7, "20260901")
	require.NoError(t, err)
	assert.Equal(t, 3, used)

	used, err = repo.Used(7, "20260902")
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestUserRankedMistakesOrdering(t *testing.T) {
	setupDB(t)
	repo := NewStatsRepository()
	now := time.Now()

	bump := func(itemID string, correct bool) {
		require.NoError(t, Tx(func(tx *sqlx.Tx) error {
			return repo.BumpCountersTx(tx, 7, itemID, correct, now)
		}))
	}

	// a1: 1/2 wrong, b2: 2/2 wrong, c3: 0/3 wrong
	bump("a1", false)
	bump("a1", true)
	bump("b2", false)
	bump("b2", false)
	bump("c3", true)
	bump("c3", true)
	bump("c3", true)

	ranked, err := repo.UserRankedMistakes(7, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "a1", "c3"}, ranked, "worst wrong rate first")

	ranked, err = repo.UserRankedMistakes(7, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "a1"}, ranked)

	// Another user's counters do not leak in
	ranked, err = repo.UserRankedMistakes(8, 10)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestGlobalReadinessCounts(t *testing.T) {
	setupDB(t)
	repo := NewStatsRepository()
	now := time.Now()

	bump := func(userID int64, itemID string, correct bool) {
		require.NoError(t, Tx(func(tx *sqlx.Tx) error {
			return repo.BumpCountersTx(tx, userID, itemID, correct, now)
		}))
	}

	bump(1, "a1", false)
	bump(2, "a1", true)
	bump(1, "b2", true)

	total, qualified, err := repo.GlobalReadiness(2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, qualified, "only a1 reaches two attempts")

	ranked, err := repo.GlobalRankedMistakes(2, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ranked)
}

func TestLeaderboardOrdering(t *testing.T) {
	setupDB(t)
	stats := NewStatsRepository()
	users := NewUserRepository()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, users.Ensure(&models.User{ID: 1, Username: "anna"}))
	require.NoError(t, users.Ensure(&models.User{ID: 2, FirstName: "Борис"}))

	log := func(userID int64, correct bool, at time.Time) {
		require.NoError(t, Tx(func(tx *sqlx.Tx) error {
			return stats.AppendAnswerTx(tx, &models.AnswerLogEntry{
				UserID:    userID,
				Title:     "Картина",
				Museum:    models.MuseumRussian,
				Chosen:    models.MuseumRussian,
				IsCorrect: correct,
				CreatedAt: at,
			})
		}))
	}

	// anna: 2/2 this week, Борис: 1/2, plus an old answer outside the window
	log(1, true, now)
	log(1, true, now)
	log(2, true, now)
	log(2, false, now)
	log(2, false, now.AddDate(0, 0, -30))

	rows, err := stats.Leaderboard(now.AddDate(0, 0, -7), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, "anna", rows[0].Username)
	assert.Equal(t, 2, rows[0].Correct)
	assert.Equal(t, 2, rows[0].Total)

	assert.Equal(t, int64(2), rows[1].UserID)
	assert.Equal(t, "Борис", rows[1].FirstName)
	assert.Equal(t, 1, rows[1].Correct)
	assert.Equal(t, 2, rows[1].Total, "answers outside the window are excluded")
}

func TestUserStatsStreak(t *testing.T) {
	setupDB(t)
	repo := NewUserRepository()
	now := time.Now()

	bump := func(correct bool) {
		require.NoError(t, Tx(func(tx *sqlx.Tx) error {
			return repo.BumpStatsTx(tx, 7, correct, now)
		}))
	}

	missing, err := repo.GetStats(7)
	require.NoError(t, err)
	assert.Nil(t, missing)

	bump(true)
	bump(true)
	bump(false)
	bump(true)

	stats, err := repo.GetStats(7)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Correct)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Streak, "a wrong answer resets the streak")
}

func TestMetaRoundTrip(t *testing.T) {
	setupDB(t)
	repo := NewMetaRepository()

	val, err := repo.Get("flag")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	require.NoError(t, repo.Set("flag", "1"))
	require.NoError(t, repo.Set("flag", "2"))

	val, err = repo.Get("flag")
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}

func TestTxRollsBackOnError(t *testing.T) {
	setupDB(t)
	repo := NewQuotaRepository()

	err := Tx(func(tx *sqlx.Tx) error {
		if err := repo.IncrementTx(tx, 7, "20260901"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	used, err := repo.Used(7, "20260901")
	require.NoError(t, err)
	assert.Equal(t, 0, used, "a failed transaction leaves no trace")
}
