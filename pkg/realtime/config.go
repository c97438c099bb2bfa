package realtime

import "time"

// Config holds hub settings.
type Config struct {
	BufferSize    int           `env:"REALTIME_BUFFER_SIZE" envDefault:"16"`
	MaxRecipients int           `env:"REALTIME_MAX_RECIPIENTS" envDefault:"10000"`
	KeepAlive     time.Duration `env:"REALTIME_KEEPALIVE" envDefault:"25s"`
}
