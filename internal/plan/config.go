package plan

import (
	"os"
	"strconv"
)

// Config holds the knobs of the daily plan generator
type Config struct {
	// Insert one review slot after every ReviewEvery-1 new slots.
	// Values below 2 disable interleaved review slots.
	ReviewEvery int
	// Review slots emitted before the first new slot
	PrefixSlots int
	// Review-only slots appended after the new sequence so the day keeps
	// serving content once the catalog pass is done
	TailSlots int
	// Global readiness: total attempts must reach ReadyMinAttempts and at
	// least ReadyMinItems items must have ReadyMinPerItem attempts each
	ReadyMinAttempts int
	ReadyMinPerItem  int
	ReadyMinItems    int
	// Size of the ranked top-mistakes list review slots bind to
	TopMistakes int
}

// DefaultConfig returns the default generator configuration
func DefaultConfig() Config {
	return Config{
		ReviewEvery:      3,
		PrefixSlots:      0,
		TailSlots:        200,
		ReadyMinAttempts: 200,
		ReadyMinPerItem:  5,
		ReadyMinItems:    10,
		TopMistakes:      20,
	}
}

// ConfigFromEnv returns the default configuration with environment overrides
// applied
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	envInt("REVIEW_EVERY", &cfg.ReviewEvery)
	envInt("REVIEW_PREFIX_SLOTS", &cfg.PrefixSlots)
	envInt("REVIEW_TAIL_SLOTS", &cfg.TailSlots)
	envInt("READY_MIN_ATTEMPTS", &cfg.ReadyMinAttempts)
	envInt("READY_MIN_PER_ITEM", &cfg.ReadyMinPerItem)
	envInt("READY_MIN_ITEMS", &cfg.ReadyMinItems)
	envInt("TOP_MISTAKES_SIZE", &cfg.TopMistakes)
	return cfg
}

func envInt(name string, target *int) {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			*target = v
		}
	}
}
