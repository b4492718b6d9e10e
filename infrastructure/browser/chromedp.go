package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// ChromedpEngine drives Chrome over the DevTools protocol with chromedp
type ChromedpEngine struct {
	ctx            context.Context
	cancel         func()
	viewportHeight int
	logger         logrus.FieldLogger
}

var _ interfaces.Engine = (*ChromedpEngine)(nil)

// NewChromedpEngine - launches Chrome, or attaches to UI_REMOTE_URL when set
func NewChromedpEngine(cfg config.Config, logger logrus.FieldLogger) (*ChromedpEngine, error) {
	width, height := int(cfg.ViewportWidth.Int64), int(cfg.ViewportHeight.Int64)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if remote := cfg.RemoteURL.String; remote != "" {
		logger.Infof("Attaching to remote browser at %s", remote)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), remote)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless.Bool),
			chromedp.WindowSize(width, height),
			chromedp.NoSandbox,
			chromedp.DisableGPU,
		)
		if bin := cfg.BrowserBin.String; bin != "" {
			opts = append(opts, chromedp.ExecPath(bin))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))
	e := &ChromedpEngine{
		ctx: ctx,
		cancel: func() {
			cancel()
			allocCancel()
		},
		viewportHeight: height,
		logger:         logger,
	}

	// The first Run starts the browser.
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return page.SetBypassCSP(true).Do(ctx)
		}),
	); err != nil {
		e.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.WithField("viewport", fmt.Sprintf("%dx%d", width, height)).Info("Chromedp browser started")
	return e, nil
}

// run - executes actions in the browser context, aborting when ctx is done
func (e *ChromedpEngine) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(e.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate - loads url and waits for the body
func (e *ChromedpEngine) Navigate(ctx context.Context, url string) error {
	if err := e.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Evaluate - inlines arg and evaluates fn in the page
func (e *ChromedpEngine) Evaluate(ctx context.Context, fn string, arg any) (any, error) {
	expr, err := callExpression(fn, arg)
	if err != nil {
		return nil, err
	}
	var res any
	if err := e.run(ctx, chromedp.Evaluate(expr, &res)); err != nil {
		return nil, err
	}
	return res, nil
}

// Query - binds locator to the browser context
func (e *ChromedpEngine) Query(locator entities.Locator) interfaces.Chain {
	return &chromedpChain{engine: e, locator: locator.Normalized()}
}

// ViewportHeight - returns the configured viewport height
func (e *ChromedpEngine) ViewportHeight() int {
	return e.viewportHeight
}

// Close - closes the browser
func (e *ChromedpEngine) Close() error {
	err := chromedp.Cancel(e.ctx)
	e.cancel()
	return err
}

type chromedpChain struct {
	engine  *ChromedpEngine
	locator entities.Locator
}

func (c *chromedpChain) Locator() entities.Locator {
	return c.locator
}

func (c *chromedpChain) by() chromedp.QueryOption {
	if c.locator.Kind == entities.KindXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (c *chromedpChain) Count(ctx context.Context) (int, error) {
	res, err := c.engine.Evaluate(ctx, countJS, newPageQuery(c.locator))
	if err != nil {
		return 0, err
	}
	return entities.ParseCount(res)
}

func (c *chromedpChain) ensure(ctx context.Context) error {
	n, err := c.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return entities.NoElementError(c.locator.Selector)
	}
	return nil
}

func (c *chromedpChain) click(ctx context.Context, opts entities.ClickOptions, double bool) error {
	if err := c.ensure(ctx); err != nil {
		return err
	}
	if opts.Force {
		q := newPageQuery(c.locator)
		q.Double = double
		res, err := c.engine.Evaluate(ctx, forceClickFirstJS, q)
		if err != nil {
			return err
		}
		if !isTrue(res) {
			return entities.NoElementError(c.locator.Selector)
		}
		return nil
	}
	if double {
		return c.engine.run(ctx, chromedp.DoubleClick(c.locator.Selector, c.by(), chromedp.NodeVisible))
	}
	return c.engine.run(ctx, chromedp.Click(c.locator.Selector, c.by(), chromedp.NodeVisible))
}

func (c *chromedpChain) Click(ctx context.Context, opts entities.ClickOptions) error {
	return c.click(ctx, opts, false)
}

func (c *chromedpChain) DoubleClick(ctx context.Context, opts entities.ClickOptions) error {
	return c.click(ctx, opts, true)
}

func (c *chromedpChain) ScrollIntoView(ctx context.Context, offset entities.ScrollOffset) error {
	q := newPageQuery(c.locator)
	q.Offset = &offset
	res, err := c.engine.Evaluate(ctx, scrollFirstJS, q)
	if err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", c.locator.Selector, err)
	}
	if !isTrue(res) {
		return entities.NoElementError(c.locator.Selector)
	}
	return nil
}
