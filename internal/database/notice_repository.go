package database

import (
	"fmt"
	"time"

	"github.com/example/artquizbot/pkg/models"
)

// NoticeRepository handles the queue of deferred "come back" summaries
type NoticeRepository struct{}

// NewNoticeRepository creates a new repository instance
func NewNoticeRepository() *NoticeRepository {
	return &NoticeRepository{}
}

// EnqueueIfAbsent schedules one notice per user per day. A duplicate enqueue
// is silently dropped by the primary key.
func (r *NoticeRepository) EnqueueIfAbsent(userID int64, day string, notBefore time.Time) error {
	_, err := DB.Exec(
		`INSERT INTO pending_notices (user_id, day, not_before, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, day) DO NOTHING`,
		userID, day, notBefore, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue notice: %v", err)
	}
	return nil
}

// Due returns up to limit unsent notices whose time has come. The batch is
// bounded so a degraded front-end never piles up unbounded work in one tick;
// whatever is left stays queued for the next tick.
func (r *NoticeRepository) Due(now time.Time, limit int) ([]models.PendingNotice, error) {
	var notices []models.PendingNotice
	err := DB.Select(&notices,
		`SELECT user_id, day, not_before, sent_at, created_at
		 FROM pending_notices
		 WHERE sent_at IS NULL AND not_before <= $1
		 ORDER BY not_before ASC
		 LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due notices: %v", err)
	}
	return notices, nil
}

// MarkSent records a successful send so the notice is never delivered twice
func (r *NoticeRepository) MarkSent(userID int64, day string, now time.Time) error {
	_, err := DB.Exec(
		"UPDATE pending_notices SET sent_at = $1 WHERE user_id = $2 AND day = $3 AND sent_at IS NULL",
		now, userID, day,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notice sent: %v", err)
	}
	return nil
}
