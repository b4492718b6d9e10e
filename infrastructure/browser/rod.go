package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// RodEngine drives Chrome with go-rod
type RodEngine struct {
	browser        *rod.Browser
	page           *rod.Page
	launcher       *launcher.Launcher
	viewportHeight int
	logger         logrus.FieldLogger
}

var _ interfaces.Engine = (*RodEngine)(nil)

// NewRodEngine - launches Chrome, or connects to UI_REMOTE_URL when set
func NewRodEngine(cfg config.Config, logger logrus.FieldLogger) (*RodEngine, error) {
	e := &RodEngine{
		viewportHeight: int(cfg.ViewportHeight.Int64),
		logger:         logger,
	}

	controlURL := cfg.RemoteURL.String
	if controlURL == "" {
		l := launcher.New().
			Set("no-sandbox").
			Set("disable-gpu").
			Set("disable-dev-shm-usage").
			Headless(cfg.Headless.Bool).
			Leakless(false)
		if bin := cfg.BrowserBin.String; bin != "" {
			l = l.Bin(bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
		e.launcher = l
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		e.kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	e.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(cfg.ViewportWidth.Int64),
		Height:            int(cfg.ViewportHeight.Int64),
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	e.page = page

	logger.WithField("control_url", controlURL).Info("Rod browser started")
	return e, nil
}

func (e *RodEngine) kill() {
	if e.launcher != nil {
		e.launcher.Kill()
		e.launcher = nil
	}
}

// Navigate - loads url and waits for the load event
func (e *RodEngine) Navigate(ctx context.Context, url string) error {
	p := e.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return p.WaitLoad()
}

// Evaluate - runs fn in the page with arg
func (e *RodEngine) Evaluate(ctx context.Context, fn string, arg any) (any, error) {
	res, err := e.page.Context(ctx).Eval(fn, arg)
	if err != nil {
		return nil, err
	}
	return res.Value.Val(), nil
}

// Query - binds locator to the current page
func (e *RodEngine) Query(locator entities.Locator) interfaces.Chain {
	return &rodChain{engine: e, locator: locator.Normalized()}
}

// ViewportHeight - returns the configured viewport height
func (e *RodEngine) ViewportHeight() int {
	return e.viewportHeight
}

// Close - closes the browser and kills it when this engine launched it
func (e *RodEngine) Close() error {
	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	e.kill()
	return err
}

type rodChain struct {
	engine  *RodEngine
	locator entities.Locator
}

func (c *rodChain) Locator() entities.Locator {
	return c.locator
}

func (c *rodChain) elements(ctx context.Context) (rod.Elements, error) {
	p := c.engine.page.Context(ctx)
	if c.locator.Kind == entities.KindXPath {
		return p.ElementsX(c.locator.Selector)
	}
	return p.Elements(c.locator.Selector)
}

func (c *rodChain) Count(ctx context.Context) (int, error) {
	els, err := c.elements(ctx)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// first - returns the first match, or ErrNoElement when there is none
func (c *rodChain) first(ctx context.Context) (*rod.Element, error) {
	els, err := c.elements(ctx)
	if err != nil {
		return nil, err
	}
	if els.Empty() {
		return nil, entities.NoElementError(c.locator.Selector)
	}
	return els.First(), nil
}

func (c *rodChain) Click(ctx context.Context, opts entities.ClickOptions) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	if opts.Force {
		_, err = el.Eval(forceClickThisJS)
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (c *rodChain) DoubleClick(ctx context.Context, opts entities.ClickOptions) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	if opts.Force {
		_, err = el.Eval(forceDblClickThisJS)
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 2)
}

func (c *rodChain) ScrollIntoView(ctx context.Context, offset entities.ScrollOffset) error {
	el, err := c.first(ctx)
	if err != nil {
		return err
	}
	if _, err := el.Eval(scrollThisJS, map[string]float64{"top": offset.Top, "left": offset.Left}); err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", c.locator.Selector, err)
	}
	return nil
}
