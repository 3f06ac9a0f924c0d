package bot

import (
	"log"
	"os"
	"strconv"
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Daily limit of paintings delivered per user
	DailyLimit int
	// How many times a failed delivery is retried with the next candidate
	// before giving up with a generic message
	DeliveryRetries int
	// Local hour the deferred next-day summary becomes due
	SummaryHour int
	// Timezone the service day lives in
	Location *time.Location
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DailyLimit:      15,
		DeliveryRetries: 3,
		SummaryHour:     10,
		Location:        time.UTC,
	}
}

// ConfigFromEnv returns the default configuration with environment overrides
func ConfigFromEnv() *BotConfig {
	cfg := DefaultConfig()
	if s := os.Getenv("DAILY_LIMIT"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.DailyLimit = v
		}
	}
	if s := os.Getenv("DELIVERY_RETRIES"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.DeliveryRetries = v
		}
	}
	if s := os.Getenv("SUMMARY_HOUR"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 && v <= 23 {
			cfg.SummaryHour = v
		}
	}
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("Warning: invalid TIMEZONE %q, using UTC", tz)
		} else {
			cfg.Location = loc
		}
	}
	return cfg
}
