package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/artquizbot/internal/database"
	"github.com/go-co-op/gocron"
)

const (
	// DefaultSweepMinutes is the fixed interval between sweep ticks
	DefaultSweepMinutes = 5
	// DefaultBatchSize bounds how many notices one tick may send
	DefaultBatchSize = 50
)

// Scheduler drains the queue of deferred "come back" notices on a fixed
// interval. Each tick handles a bounded batch; whatever fails or does not
// fit stays queued for the next tick, and the per-user-per-day key keeps a
// retried notice from ever being sent twice.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	notices   *database.NoticeRepository
	batchSize int
}

// Notifier interface for sending notifications
type Notifier interface {
	SendDailySummary(userID int64) error
}

// New creates a new scheduler instance
func New(notifier Notifier, loc *time.Location) *Scheduler {
	batch := DefaultBatchSize
	if s := os.Getenv("SWEEP_BATCH"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			batch = v
		}
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		notifier:  notifier,
		notices:   database.NewNoticeRepository(),
		batchSize: batch,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	minutes := DefaultSweepMinutes
	if str := os.Getenv("SWEEP_INTERVAL_MINUTES"); str != "" {
		if v, err := strconv.Atoi(str); err == nil && v > 0 {
			minutes = v
		}
	}

	s.scheduler.Every(minutes).Minutes().Do(s.sweepNotices)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepNotices sends one bounded batch of due notices
func (s *Scheduler) sweepNotices() {
	due, err := s.notices.Due(time.Now(), s.batchSize)
	if err != nil {
		log.Printf("Error getting due notices: %v", err)
		return
	}

	for _, notice := range due {
		if err := s.notifier.SendDailySummary(notice.UserID); err != nil {
			// Notice stays queued for the next tick
			log.Printf("Error sending summary to user %d: %v", notice.UserID, err)
			continue
		}
		if err := s.notices.MarkSent(notice.UserID, notice.Day, time.Now()); err != nil {
			log.Printf("Error marking notice sent for user %d: %v", notice.UserID, err)
		}
	}
}

// RunManualSweep forces one sweep tick
func (s *Scheduler) RunManualSweep() {
	s.sweepNotices()
}
