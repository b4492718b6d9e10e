package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"
)

// Drivers supported by the browser engine factory
const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
	DriverRod        = "rod"
	DriverSelenium   = "selenium"
)

// Config holds everything needed to start an engine and build element handles
type Config struct {
	Driver   null.String `json:"driver" envconfig:"UI_DRIVER"`
	Headless null.Bool   `json:"headless" envconfig:"UI_HEADLESS"`

	ViewportWidth  null.Int `json:"viewportWidth" envconfig:"UI_VIEWPORT_WIDTH"`
	ViewportHeight null.Int `json:"viewportHeight" envconfig:"UI_VIEWPORT_HEIGHT"`

	PollIntervalMs    null.Int  `json:"pollIntervalMs" envconfig:"UI_POLL_INTERVAL_MS"`
	DefaultTimeoutMs  null.Int  `json:"defaultTimeoutMs" envconfig:"UI_DEFAULT_TIMEOUT_MS"`
	LegacyXPathQuotes null.Bool `json:"legacyXPathQuotes" envconfig:"UI_LEGACY_XPATH_QUOTES"`

	// Connection.
	RemoteURL     null.String `json:"remoteURL,omitempty" envconfig:"UI_REMOTE_URL"`
	BrowserBin    null.String `json:"browserBin,omitempty" envconfig:"UI_BROWSER_BIN"`
	WebDriverPath null.String `json:"webDriverPath,omitempty" envconfig:"UI_WEBDRIVER_PATH"`
	WebDriverPort null.Int    `json:"webDriverPort,omitempty" envconfig:"UI_WEBDRIVER_PORT"`

	// Files.
	LocatorsFile null.String `json:"locatorsFile,omitempty" envconfig:"UI_LOCATORS_FILE"`
	ReportDir    null.String `json:"reportDir,omitempty" envconfig:"UI_REPORT_DIR"`

	LogLevel null.String `json:"logLevel" envconfig:"UI_LOG_LEVEL"`
}

// NewConfig creates a config with default values
func NewConfig() Config {
	return Config{
		Driver:            null.NewString(DriverPlaywright, false),
		Headless:          null.NewBool(true, false),
		ViewportWidth:     null.NewInt(1000, false),
		ViewportHeight:    null.NewInt(660, false),
		PollIntervalMs:    null.NewInt(200, false),
		DefaultTimeoutMs:  null.NewInt(5000, false),
		LegacyXPathQuotes: null.NewBool(false, false),
		WebDriverPort:     null.NewInt(9515, false),
		LogLevel:          null.NewString("info", false),
	}
}

// Apply overlays every valid field of cfg onto c
func (c Config) Apply(cfg Config) Config {
	if cfg.Driver.Valid {
		c.Driver = cfg.Driver
	}
	if cfg.Headless.Valid {
		c.Headless = cfg.Headless
	}
	if cfg.ViewportWidth.Valid {
		c.ViewportWidth = cfg.ViewportWidth
	}
	if cfg.ViewportHeight.Valid {
		c.ViewportHeight = cfg.ViewportHeight
	}
	if cfg.PollIntervalMs.Valid {
		c.PollIntervalMs = cfg.PollIntervalMs
	}
	if cfg.DefaultTimeoutMs.Valid {
		c.DefaultTimeoutMs = cfg.DefaultTimeoutMs
	}
	if cfg.LegacyXPathQuotes.Valid {
		c.LegacyXPathQuotes = cfg.LegacyXPathQuotes
	}
	if cfg.RemoteURL.Valid {
		c.RemoteURL = cfg.RemoteURL
	}
	if cfg.BrowserBin.Valid {
		c.BrowserBin = cfg.BrowserBin
	}
	if cfg.WebDriverPath.Valid {
		c.WebDriverPath = cfg.WebDriverPath
	}
	if cfg.WebDriverPort.Valid {
		c.WebDriverPort = cfg.WebDriverPort
	}
	if cfg.LocatorsFile.Valid {
		c.LocatorsFile = cfg.LocatorsFile
	}
	if cfg.ReportDir.Valid {
		c.ReportDir = cfg.ReportDir
	}
	if cfg.LogLevel.Valid {
		c.LogLevel = cfg.LogLevel
	}
	return c
}

// Load reads the optional dotenv files (".env" when none are given) into
// the process environment and builds the config from it.
func Load(logger logrus.FieldLogger, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
			}
			logger.Debugf("%s not found, using environment variables", f)
		}
	}

	envConfig := Config{}
	if err := envconfig.Process("", &envConfig); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg := NewConfig().Apply(envConfig)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would make engines or waits misbehave
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Driver.String) {
	case DriverPlaywright, DriverChromedp, DriverRod, DriverSelenium:
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver.String))
	}
	if c.ViewportWidth.Int64 <= 0 || c.ViewportHeight.Int64 <= 0 {
		errs = append(errs, fmt.Errorf("invalid viewport %dx%d", c.ViewportWidth.Int64, c.ViewportHeight.Int64))
	}
	if c.PollIntervalMs.Int64 <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %d", c.PollIntervalMs.Int64))
	}
	if c.DefaultTimeoutMs.Int64 < 0 {
		errs = append(errs, fmt.Errorf("default timeout must not be negative, got %d", c.DefaultTimeoutMs.Int64))
	}
	if _, err := logrus.ParseLevel(c.LogLevel.String); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PollInterval returns the wait poll interval
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs.Int64) * time.Millisecond
}

// DefaultTimeout returns the timeout used when a step names none
func (c Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMs.Int64) * time.Millisecond
}

// DriverName returns the lower-cased driver name
func (c Config) DriverName() string {
	return strings.ToLower(c.Driver.String)
}
