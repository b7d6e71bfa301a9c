package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentionalhq/notifier/pkg/config"
)

type testConfig struct {
	CycleInterval time.Duration `env:"TEST_CYCLE_INTERVAL" envDefault:"60s"`
	BatchCap      int           `env:"TEST_BATCH_CAP" envDefault:"10"`
	APIKey        string        `env:"TEST_API_KEY"`
	Required      string        `env:"TEST_REQUIRED_VALUE,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 60*time.Second, cfg.CycleInterval)
		assert.Equal(t, 10, cfg.BatchCap)
		assert.Equal(t, "", cfg.APIKey)
		assert.Equal(t, "present", cfg.Required)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")
		t.Setenv("TEST_CYCLE_INTERVAL", "5m")
		t.Setenv("TEST_BATCH_CAP", "25")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 5*time.Minute, cfg.CycleInterval)
		assert.Equal(t, 25, cfg.BatchCap)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")
		t.Setenv("TEST_BATCH_CAP", "lots")

		var cfg testConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		var cfg testConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("succeeds", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")

		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
	})
}
