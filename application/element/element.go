// Package element implements page-object element handles on top of a
// browser automation engine.
//
// An Element owns one locator. SetDynamicValue rewrites that locator in
// place and returns the same Element, so every holder of the handle sees
// the filled selector afterwards; use WithDynamicValue to get an
// independent copy instead.
package element

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// scrollTopMargin is the height of the fixed overlay at the top of the
// page that scrolled elements must land below.
const scrollTopMargin = 50

// Element wraps a locator and the engine it is queried through
type Element struct {
	mu      sync.RWMutex
	locator entities.Locator

	engine       interfaces.Engine
	logger       logrus.FieldLogger
	pollInterval time.Duration
	legacyQuotes bool
}

// Option configures an Element
type Option func(*Element)

// WithLogger sets the logger operations are reported to
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Element) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPollInterval sets how often waits re-query the page
func WithPollInterval(d time.Duration) Option {
	return func(e *Element) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithLegacyXPathQuotes makes Length replace double quotes in XPath
// selectors with single quotes before evaluating them.
func WithLegacyXPathQuotes(enabled bool) Option {
	return func(e *Element) {
		e.legacyQuotes = enabled
	}
}

// New - creates an element handle from a bare selector
func New(engine interfaces.Engine, selector string, opts ...Option) *Element {
	return FromLocator(engine, entities.NewLocator(selector), opts...)
}

// FromLocator - creates an element handle owning locator. The selector
// kind is fixed here; later SetDynamicValue calls do not re-detect it.
func FromLocator(engine interfaces.Engine, locator entities.Locator, opts ...Option) *Element {
	e := &Element{
		locator:      locator.Normalized(),
		engine:       engine,
		logger:       logrus.StandardLogger(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locator returns a snapshot of the owned locator
func (e *Element) Locator() entities.Locator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.locator
}

// Chain resolves the locator through the engine for further commands
func (e *Element) Chain() interfaces.Chain {
	return e.engine.Query(e.Locator())
}

// Click scrolls the element below the top overlay and clicks it without
// waiting for it to become actionable.
func (e *Element) Click(ctx context.Context) error {
	chain, err := e.ScrollIntoView(ctx)
	if err != nil {
		return err
	}
	e.log().Debug("Clicking element")
	return chain.Click(ctx, entities.ClickOptions{Force: true})
}

// DoubleClickWOScroll double-clicks the element where it currently is
func (e *Element) DoubleClickWOScroll(ctx context.Context) error {
	e.log().Debug("Double-clicking element")
	return e.Chain().DoubleClick(ctx, entities.ClickOptions{Force: true})
}

// WaitForVisible polls until the selector matches at least one element.
// It fails with an *entities.TimeoutError once timeout has elapsed.
func (e *Element) WaitForVisible(ctx context.Context, timeout time.Duration) error {
	return e.waitFor(ctx, entities.StateVisible, timeout)
}

// WaitForInvisible polls until the selector matches nothing
func (e *Element) WaitForInvisible(ctx context.Context, timeout time.Duration) error {
	return e.waitFor(ctx, entities.StateInvisible, timeout)
}

// SetDynamicValue fills the selector's placeholders with values in order,
// mutating this handle, and returns it for chaining. Filled placeholders
// are gone, so a second call only reaches the ones left over.
func (e *Element) SetDynamicValue(values ...any) *Element {
	e.mu.Lock()
	e.locator.Selector = formatSelector(e.locator.Selector, values...)
	e.mu.Unlock()
	return e
}

// WithDynamicValue is SetDynamicValue on a copy; the receiver keeps its
// template.
func (e *Element) WithDynamicValue(values ...any) *Element {
	loc := e.Locator()
	loc.Selector = formatSelector(loc.Selector, values...)
	return &Element{
		locator:      loc,
		engine:       e.engine,
		logger:       e.logger,
		pollInterval: e.pollInterval,
		legacyQuotes: e.legacyQuotes,
	}
}

// IsExistent reports whether the selector matches anything right now
func (e *Element) IsExistent(ctx context.Context) (bool, error) {
	loc := e.Locator()
	return strategyFor(loc.Kind, e.legacyQuotes).exists(ctx, e.engine, loc.Selector)
}

// Length returns the number of elements the selector matches
func (e *Element) Length(ctx context.Context) (int, error) {
	loc := e.Locator()
	return strategyFor(loc.Kind, e.legacyQuotes).length(ctx, e.engine, loc.Selector)
}

// ScrollIntoView scrolls the element so that it sits half a viewport minus
// the top overlay below the top edge, and returns the chain for further
// commands.
func (e *Element) ScrollIntoView(ctx context.Context) (interfaces.Chain, error) {
	top := float64(e.engine.ViewportHeight())/2 - scrollTopMargin
	chain := e.Chain()
	if err := chain.ScrollIntoView(ctx, entities.ScrollOffset{Top: -top, Left: 0}); err != nil {
		return nil, err
	}
	return chain, nil
}

func (e *Element) log() logrus.FieldLogger {
	return e.logger.WithField("selector", e.Locator().Selector)
}
