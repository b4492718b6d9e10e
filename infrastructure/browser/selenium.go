package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// SeleniumEngine drives Chrome through chromedriver and the WebDriver protocol
type SeleniumEngine struct {
	wd             selenium.WebDriver
	service        *selenium.Service
	viewportHeight int
	logger         logrus.FieldLogger
}

var _ interfaces.Engine = (*SeleniumEngine)(nil)

// Places the selenium engine looks for executables when none is configured,
// tried before the names on PATH.
var (
	chromeDriverPaths = []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	chromeDriverNames = []string{"chromedriver"}

	chromeBinaryPaths = []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	chromeBinaryNames = []string{"google-chrome", "chromium", "chromium-browser"}
)

var errExecutableNotFound = errors.New("executable not found")

// locateExecutable - returns configured if it exists, otherwise the first
// existing path, otherwise the first name found on PATH
func locateExecutable(configured string, paths, names []string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("%w at %s", errExecutableNotFound, configured)
		}
		return configured, nil
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errExecutableNotFound
}

// NewSeleniumEngine - starts chromedriver and opens a Chrome session
func NewSeleniumEngine(cfg config.Config, logger logrus.FieldLogger) (*SeleniumEngine, error) {
	driverPath, err := locateExecutable(cfg.WebDriverPath.String, chromeDriverPaths, chromeDriverNames)
	if err != nil {
		return nil, fmt.Errorf("chromedriver: %w, install it or set UI_WEBDRIVER_PATH", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port := int(cfg.WebDriverPort.Int64)
	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	args := []string{
		"--disable-dev-shm-usage",
		"--no-sandbox",
		fmt.Sprintf("--window-size=%d,%d", cfg.ViewportWidth.Int64, cfg.ViewportHeight.Int64),
	}
	if cfg.Headless.Bool {
		args = append(args, "--headless=new")
	}
	chromeCaps := chrome.Capabilities{Args: args}
	chromeBinary, err := locateExecutable(cfg.BrowserBin.String, chromeBinaryPaths, chromeBinaryNames)
	switch {
	case err == nil:
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
		chromeCaps.Path = chromeBinary
	case cfg.BrowserBin.String != "":
		service.Stop()
		return nil, fmt.Errorf("chrome: %w", err)
	default:
		logger.Debug("No Chrome binary found, leaving the choice to chromedriver")
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found, set UI_BROWSER_BIN: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumEngine{
		wd:             wd,
		service:        service,
		viewportHeight: int(cfg.ViewportHeight.Int64),
		logger:         logger,
	}, nil
}

// Navigate - navigates browser to specified URL
func (s *SeleniumEngine) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Infof("Navigating to: %s", url)
	return s.wd.Get(url)
}

// Evaluate - runs fn with arg through ExecuteScript
func (s *SeleniumEngine) Evaluate(ctx context.Context, fn string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.wd.ExecuteScript(fmt.Sprintf("return (%s).apply(null, arguments);", fn), []interface{}{arg})
}

// Query - binds locator to this session
func (s *SeleniumEngine) Query(locator entities.Locator) interfaces.Chain {
	return &seleniumChain{engine: s, locator: locator.Normalized()}
}

// ViewportHeight - returns the configured viewport height
func (s *SeleniumEngine) ViewportHeight() int {
	return s.viewportHeight
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumEngine) Close() error {
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			s.logger.Warnf("Failed to quit webdriver: %v", err)
		}
		s.wd = nil
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil {
			return fmt.Errorf("failed to stop chromedriver: %w", err)
		}
		s.service = nil
	}
	return nil
}

type seleniumChain struct {
	engine  *SeleniumEngine
	locator entities.Locator
}

func (c *seleniumChain) Locator() entities.Locator {
	return c.locator
}

func (c *seleniumChain) by() string {
	if c.locator.Kind == entities.KindXPath {
		return selenium.ByXPATH
	}
	return selenium.ByCSSSelector
}

func (c *seleniumChain) elements(ctx context.Context) ([]selenium.WebElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.wd.FindElements(c.by(), c.locator.Selector)
}

func (c *seleniumChain) Count(ctx context.Context) (int, error) {
	els, err := c.elements(ctx)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// first - finds the first match, or ErrNoElement when there is none
func (c *seleniumChain) first(ctx context.Context) (selenium.WebElement, error) {
	els, err := c.elements(ctx)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, entities.NoElementError(c.locator.Selector)
	}
	return els[0], nil
}

func (c *seleniumChain) callOn(el selenium.WebElement, fn string, arg any) error {
	_, err := c.engine.wd.ExecuteScript(
		fmt.Sprintf("return (%s).call(arguments[0], arguments[1]);", fn),
		[]interface{}{el, arg},
	)
	return err
}

func (c *seleniumChain) Click(ctx context.Context, opts entities.ClickOptions) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	if opts.Force {
		return c.callOn(el, forceClickThisJS, nil)
	}
	return el.Click()
}

func (c *seleniumChain) DoubleClick(ctx context.Context, opts entities.ClickOptions) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	if opts.Force {
		return c.callOn(el, forceDblClickThisJS, nil)
	}
	if err := el.MoveTo(0, 0); err != nil {
		c.engine.logger.Warnf("Failed to move to element: %v", err)
	}
	return c.engine.wd.DoubleClick()
}

func (c *seleniumChain) ScrollIntoView(ctx context.Context, offset entities.ScrollOffset) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	if err := c.callOn(el, scrollThisJS, map[string]float64{"top": offset.Top, "left": offset.Left}); err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", c.locator.Selector, err)
	}
	return nil
}
