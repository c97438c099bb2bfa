package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorhub/pkg/config"
)

type sampleConfig struct {
	Addr      string        `env:"TEST_HTTP_ADDR" envDefault:":8080"`
	Timeout   time.Duration `env:"TEST_TIMEOUT" envDefault:"5s"`
	Required  string        `env:"TEST_REQUIRED,required"`
	DaysOld   int           `env:"TEST_DAYS_OLD" envDefault:"30"`
	EnableOpt bool          `env:"TEST_ENABLE_OPT"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults and overrides", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED", "yes")
		t.Setenv("TEST_TIMEOUT", "1m")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, time.Minute, cfg.Timeout)
		assert.Equal(t, "yes", cfg.Required)
		assert.Equal(t, 30, cfg.DaysOld)
		assert.False(t, cfg.EnableOpt)
	})

	t.Run("missing required variable", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED", "")

		var cfg struct {
			Value string `env:"TEST_REALLY_MISSING_VALUE,required"`
		}
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *sampleConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	var cfg struct {
		Value string `env:"TEST_MUST_LOAD_MISSING,required"`
	}
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
