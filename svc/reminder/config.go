package reminder

import "time"

// Config holds reminder settings.
type Config struct {
	// Timezone is the IANA zone bookings are scheduled in.
	Timezone       string        `env:"REMINDER_TIMEZONE" envDefault:"Local"`
	Dedupe         bool          `env:"REMINDER_DEDUPE" envDefault:"true"`
	DedupeTTL      time.Duration `env:"REMINDER_DEDUPE_TTL" envDefault:"48h"`
	CleanupDaysOld int           `env:"REMINDER_CLEANUP_DAYS" envDefault:"30"`
}
