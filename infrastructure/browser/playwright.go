package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// PlaywrightEngine drives Chromium through playwright-go
type PlaywrightEngine struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	pages      []playwright.Page
	pagesMutex sync.Mutex

	viewportHeight int
	actionTimeout  float64
	logger         logrus.FieldLogger
}

var _ interfaces.Engine = (*PlaywrightEngine)(nil)

// NewPlaywrightEngine - starts playwright and opens a page with the configured viewport
func NewPlaywrightEngine(cfg config.Config, logger logrus.FieldLogger) (*PlaywrightEngine, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless.Bool),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if cfg.BrowserBin.String != "" {
		launchOptions.ExecutablePath = playwright.String(cfg.BrowserBin.String)
	}

	browser, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  int(cfg.ViewportWidth.Int64),
			Height: int(cfg.ViewportHeight.Int64),
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	e := &PlaywrightEngine{
		pw:             pw,
		browser:        browser,
		context:        bctx,
		page:           page,
		pages:          []playwright.Page{page},
		viewportHeight: int(cfg.ViewportHeight.Int64),
		actionTimeout:  float64(cfg.DefaultTimeoutMs.Int64),
		logger:         logger,
	}
	e.watchPage(page)

	// Popups become the current page until they close.
	bctx.OnPage(func(newPage playwright.Page) {
		e.pagesMutex.Lock()
		e.pages = append(e.pages, newPage)
		e.page = newPage
		e.pagesMutex.Unlock()
		e.watchPage(newPage)
	})

	logger.WithField("viewport", fmt.Sprintf("%dx%d", cfg.ViewportWidth.Int64, cfg.ViewportHeight.Int64)).Info("Playwright browser started")
	return e, nil
}

// watchPage - accepts dialogs and drops the page from the list once closed
func (e *PlaywrightEngine) watchPage(page playwright.Page) {
	page.OnDialog(func(dialog playwright.Dialog) {
		e.logger.Debugf("Accepting %s dialog: %s", dialog.Type(), dialog.Message())
		_ = dialog.Accept()
	})

	page.OnClose(func(closedPage playwright.Page) {
		e.pagesMutex.Lock()
		defer e.pagesMutex.Unlock()

		for i, p := range e.pages {
			if p == closedPage {
				e.pages = append(e.pages[:i], e.pages[i+1:]...)
				break
			}
		}

		if e.page == closedPage && len(e.pages) > 0 {
			e.page = e.pages[0]
		}
	})
}

func (e *PlaywrightEngine) currentPage() playwright.Page {
	e.pagesMutex.Lock()
	defer e.pagesMutex.Unlock()
	return e.page
}

// Navigate - loads url in the current page
func (e *PlaywrightEngine) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.currentPage().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Evaluate - runs fn in the current page with arg
func (e *PlaywrightEngine) Evaluate(ctx context.Context, fn string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.currentPage().Evaluate(fn, arg)
}

// Query - resolves locator to a playwright locator
func (e *PlaywrightEngine) Query(locator entities.Locator) interfaces.Chain {
	locator = locator.Normalized()
	prefix := "css="
	if locator.Kind == entities.KindXPath {
		prefix = "xpath="
	}
	return &playwrightChain{
		engine:  e,
		locator: locator,
		target:  e.currentPage().Locator(prefix + locator.Selector),
	}
}

// ViewportHeight - returns the configured viewport height
func (e *PlaywrightEngine) ViewportHeight() int {
	return e.viewportHeight
}

// Close - closes the browser and stops playwright
func (e *PlaywrightEngine) Close() error {
	var closeErr error

	if e.context != nil {
		if err := e.context.Close(); err != nil && !isClosedError(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		e.context = nil
	}

	if e.browser != nil {
		if err := e.browser.Close(); err != nil && !isClosedError(err) {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; failed to close browser: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		}
		e.browser = nil
	}

	if e.pw != nil {
		if err := e.pw.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		e.pw = nil
	}

	return closeErr
}

func isClosedError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

type playwrightChain struct {
	engine  *PlaywrightEngine
	locator entities.Locator
	target  playwright.Locator
}

func (c *playwrightChain) Locator() entities.Locator {
	return c.locator
}

func (c *playwrightChain) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.target.Count()
}

// first - returns the first match, or ErrNoElement when there is none
func (c *playwrightChain) first(ctx context.Context) (playwright.Locator, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, entities.NoElementError(c.locator.Selector)
	}
	return c.target.First(), nil
}

func (c *playwrightChain) Click(ctx context.Context, opts entities.ClickOptions) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	return el.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: playwright.Float(c.engine.actionTimeout),
	})
}

func (c *playwrightChain) DoubleClick(ctx context.Context, opts entities.ClickOptions) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	return el.Dblclick(playwright.LocatorDblclickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: playwright.Float(c.engine.actionTimeout),
	})
}

func (c *playwrightChain) ScrollIntoView(ctx context.Context, offset entities.ScrollOffset) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	_, err = el.Evaluate(scrollElementJS, map[string]interface{}{
		"top":  offset.Top,
		"left": offset.Left,
	})
	if err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", c.locator.Selector, err)
	}
	return nil
}
