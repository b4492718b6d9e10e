package interfaces

import (
	"context"

	"ui_automation/domain/entities"
)

// Evaluator runs JavaScript inside the current page
type Evaluator interface {
	// Evaluate calls the function expression fn in the page with arg as its
	// only parameter and returns the JSON-decoded result.
	Evaluate(ctx context.Context, fn string, arg any) (any, error)
}

// Engine defines the browser automation backend element handles drive
type Engine interface {
	Evaluator

	// Query resolves a locator lazily; nothing is sent to the browser
	// until a Chain method is called.
	Query(locator entities.Locator) Chain

	// ViewportHeight returns the configured viewport height in CSS pixels
	ViewportHeight() int

	// Navigate loads url in the current page
	Navigate(ctx context.Context, url string) error

	// Close releases the browser
	Close() error
}

// Chain is a resolved query further commands are issued on. Element
// commands act on the first match and fail with entities.ErrNoElement
// when there is none.
type Chain interface {
	Locator() entities.Locator

	// Count returns the number of matching elements without waiting
	Count(ctx context.Context) (int, error)

	Click(ctx context.Context, opts entities.ClickOptions) error

	DoubleClick(ctx context.Context, opts entities.ClickOptions) error

	// ScrollIntoView scrolls the first match to the viewport's top-left
	// corner shifted by offset
	ScrollIntoView(ctx context.Context, offset entities.ScrollOffset) error
}
