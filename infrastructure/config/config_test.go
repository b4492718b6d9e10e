package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(testLogger(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverPlaywright, cfg.DriverName())
	assert.True(t, cfg.Headless.Bool)
	assert.Equal(t, int64(660), cfg.ViewportHeight.Int64)
	assert.Equal(t, int64(1000), cfg.ViewportWidth.Int64)
	assert.Equal(t, 200*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout())
	assert.False(t, cfg.LegacyXPathQuotes.Bool)
	assert.Equal(t, int64(9515), cfg.WebDriverPort.Int64)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("UI_DRIVER", "chromedp")
	t.Setenv("UI_VIEWPORT_HEIGHT", "900")
	t.Setenv("UI_POLL_INTERVAL_MS", "50")
	t.Setenv("UI_LEGACY_XPATH_QUOTES", "true")
	t.Setenv("UI_REMOTE_URL", "ws://127.0.0.1:9222")

	cfg, err := Load(testLogger(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverChromedp, cfg.DriverName())
	assert.Equal(t, int64(900), cfg.ViewportHeight.Int64)
	assert.Equal(t, int64(1000), cfg.ViewportWidth.Int64)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval())
	assert.True(t, cfg.LegacyXPathQuotes.Bool)
	assert.Equal(t, "ws://127.0.0.1:9222", cfg.RemoteURL.String)
}

func TestDotenvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("UI_DRIVER=rod\nUI_DEFAULT_TIMEOUT_MS=1500\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("UI_DRIVER")
		os.Unsetenv("UI_DEFAULT_TIMEOUT_MS")
	})

	cfg, err := Load(testLogger(), envFile)
	require.NoError(t, err)
	assert.Equal(t, DriverRod, cfg.DriverName())
	assert.Equal(t, 1500*time.Millisecond, cfg.DefaultTimeout())
}

func TestValidate(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		cfg := NewConfig().Apply(Config{Driver: null.StringFrom("netscape")})
		assert.ErrorContains(t, cfg.Validate(), "unknown driver")
	})

	t.Run("bad viewport", func(t *testing.T) {
		cfg := NewConfig().Apply(Config{ViewportHeight: null.IntFrom(0)})
		assert.ErrorContains(t, cfg.Validate(), "invalid viewport")
	})

	t.Run("bad poll interval", func(t *testing.T) {
		cfg := NewConfig().Apply(Config{PollIntervalMs: null.IntFrom(-1)})
		assert.ErrorContains(t, cfg.Validate(), "poll interval")
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := NewConfig().Apply(Config{LogLevel: null.StringFrom("chatty")})
		assert.Error(t, cfg.Validate())
	})

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewConfig().Validate())
	})
}

func TestApplyKeepsUnsetFields(t *testing.T) {
	base := NewConfig()
	got := base.Apply(Config{Headless: null.BoolFrom(false)})
	assert.False(t, got.Headless.Bool)
	assert.Equal(t, base.Driver, got.Driver)
	assert.Equal(t, base.ViewportHeight, got.ViewportHeight)
}
