package notifications

import "time"

// Config holds notification service settings.
type Config struct {
	EmailTimeout     time.Duration `env:"NOTIFICATION_EMAIL_TIMEOUT" envDefault:"30s"`
	DefaultPageLimit int           `env:"NOTIFICATION_PAGE_LIMIT" envDefault:"20"`
	MaxPageLimit     int           `env:"NOTIFICATION_MAX_PAGE_LIMIT" envDefault:"100"`
	CleanupDaysOld   int           `env:"NOTIFICATION_CLEANUP_DAYS" envDefault:"30"`
	AppURL           string        `env:"APP_URL" envDefault:"http://localhost:3000"`
	Currency         string        `env:"NOTIFICATION_CURRENCY" envDefault:"USD"`
}

// DefaultConfig mirrors the envDefault values.
func DefaultConfig() Config {
	return Config{
		EmailTimeout:     30 * time.Second,
		DefaultPageLimit: 20,
		MaxPageLimit:     100,
		CleanupDaysOld:   30,
		AppURL:           "http://localhost:3000",
		Currency:         "USD",
	}
}
