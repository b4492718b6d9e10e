package browser

import (
	"encoding/json"
	"fmt"

	"ui_automation/domain/entities"
)

// scrollElementJS scrolls el to the viewport's top-left corner shifted by offset
const scrollElementJS = `(el, offset) => {
	const rect = el.getBoundingClientRect();
	window.scrollTo(window.scrollX + rect.left + offset.left, window.scrollY + rect.top + offset.top);
	return true;
}`

// scrollThisJS is scrollElementJS for drivers that bind the element to this
const scrollThisJS = `function(offset) {
	const rect = this.getBoundingClientRect();
	window.scrollTo(window.scrollX + rect.left + offset.left, window.scrollY + rect.top + offset.top);
	return true;
}`

// forceClickThisJS clicks without any actionability check
const forceClickThisJS = `function() { this.click(); return true; }`

// forceDblClickThisJS dispatches the events a real double-click produces
const forceDblClickThisJS = `function() {
	const opts = {bubbles: true, cancelable: true, view: window, detail: 2};
	this.dispatchEvent(new MouseEvent('mousedown', opts));
	this.dispatchEvent(new MouseEvent('mouseup', opts));
	this.dispatchEvent(new MouseEvent('click', opts));
	this.dispatchEvent(new MouseEvent('dblclick', opts));
	return true;
}`

// queryJS resolves a {kind, selector} query to its matches inside the page
const queryJS = `function __uiQuery(q) {
	if (q.kind === 'xpath') {
		const snap = document.evaluate(q.selector, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		const nodes = [];
		for (let i = 0; i < snap.snapshotLength; i++) nodes.push(snap.snapshotItem(i));
		return nodes;
	}
	return Array.from(document.querySelectorAll(q.selector));
}`

// countJS counts the matches of a query
const countJS = `(q) => {
	` + queryJS + `
	return __uiQuery(q).length;
}`

// scrollFirstJS scrolls the first match of a query; false when there is none
const scrollFirstJS = `(q) => {
	` + queryJS + `
	const el = __uiQuery(q)[0];
	if (!el) return false;
	const rect = el.getBoundingClientRect();
	window.scrollTo(window.scrollX + rect.left + q.offset.left, window.scrollY + rect.top + q.offset.top);
	return true;
}`

// forceClickFirstJS clicks or double-clicks the first match of a query
const forceClickFirstJS = `(q) => {
	` + queryJS + `
	const el = __uiQuery(q)[0];
	if (!el) return false;
	if (!q.double) { el.click(); return true; }
	const opts = {bubbles: true, cancelable: true, view: window, detail: 2};
	for (const type of ['mousedown', 'mouseup', 'click', 'dblclick']) {
		el.dispatchEvent(new MouseEvent(type, opts));
	}
	return true;
}`

// pageQuery is the argument countJS and friends take
type pageQuery struct {
	Kind     entities.SelectorKind  `json:"kind"`
	Selector string                 `json:"selector"`
	Offset   *entities.ScrollOffset `json:"offset,omitempty"`
	Double   bool                   `json:"double,omitempty"`
}

func newPageQuery(loc entities.Locator) pageQuery {
	loc = loc.Normalized()
	return pageQuery{Kind: loc.Kind, Selector: loc.Selector}
}

// callExpression inlines arg as JSON so drivers without argument passing
// can call fn.
func callExpression(fn string, arg any) (string, error) {
	data, err := json.Marshal(arg)
	if err != nil {
		return "", fmt.Errorf("failed to encode script argument: %w", err)
	}
	return fmt.Sprintf("(%s)(%s)", fn, data), nil
}

func isTrue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
