package element

import (
	"context"
	"fmt"
	"strings"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Page scripts used by the query strategies. Each takes the selector (or
// XPath expression) as its only argument so no quoting is involved.
const (
	// CSSCountScript counts descendants of document.body matching a CSS selector.
	CSSCountScript = `(selector) => document.body.querySelectorAll(selector).length`

	// XPathNumberScript evaluates an XPath expression to a number.
	XPathNumberScript = `(expression) => document.evaluate(expression, document, null, XPathResult.NUMBER_TYPE, null).numberValue`

	// XPathSnapshotScript counts the nodes of an ordered snapshot of an XPath expression.
	XPathSnapshotScript = `(expression) => document.evaluate(expression, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength`
)

// queryStrategy counts matches for one selector kind
type queryStrategy interface {
	// exists is a single-shot existence check
	exists(ctx context.Context, ev interfaces.Evaluator, selector string) (bool, error)
	// length returns the number of matching elements
	length(ctx context.Context, ev interfaces.Evaluator, selector string) (int, error)
}

func strategyFor(kind entities.SelectorKind, legacyQuotes bool) queryStrategy {
	if kind == entities.KindXPath {
		return xpathStrategy{legacyQuotes: legacyQuotes}
	}
	return cssStrategy{}
}

type cssStrategy struct{}

func (cssStrategy) exists(ctx context.Context, ev interfaces.Evaluator, selector string) (bool, error) {
	n, err := cssStrategy{}.length(ctx, ev, selector)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (cssStrategy) length(ctx context.Context, ev interfaces.Evaluator, selector string) (int, error) {
	res, err := ev.Evaluate(ctx, CSSCountScript, selector)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", selector, err)
	}
	return entities.ParseCount(res)
}

type xpathStrategy struct {
	// legacyQuotes replaces every double quote with a single quote before
	// evaluating the snapshot, as the selector used to be spliced into a
	// double-quoted script literal. Expressions that need a double quote
	// are corrupted by it.
	legacyQuotes bool
}

func (xpathStrategy) exists(ctx context.Context, ev interfaces.Evaluator, selector string) (bool, error) {
	res, err := ev.Evaluate(ctx, XPathNumberScript, fmt.Sprintf("count(%s)", selector))
	if err != nil {
		return false, fmt.Errorf("failed to count %s: %w", selector, err)
	}
	n, err := entities.ParseCount(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s xpathStrategy) length(ctx context.Context, ev interfaces.Evaluator, selector string) (int, error) {
	expr := selector
	if s.legacyQuotes {
		expr = strings.ReplaceAll(expr, `"`, `'`)
	}
	res, err := ev.Evaluate(ctx, XPathSnapshotScript, expr)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %s: %w", expr, err)
	}
	return entities.ParseCount(res)
}
