package element

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// fakePage is an engine over a static HTML document. It understands the
// scripts the query strategies send and answers them with goquery (CSS)
// and htmlquery (XPath).
type fakePage struct {
	mu       sync.Mutex
	doc      *html.Node
	viewport int

	clicks       []clickCall
	scrolls      []scrollCall
	evaluations  []string
	evaluateArgs []any
}

type clickCall struct {
	selector string
	double   bool
	opts     entities.ClickOptions
}

type scrollCall struct {
	selector string
	offset   entities.ScrollOffset
}

var _ interfaces.Engine = (*fakePage)(nil)

func newFakePage(body string) *fakePage {
	p := &fakePage{viewport: 660}
	p.SetBody(body)
	return p
}

func (p *fakePage) SetBody(body string) {
	doc, err := html.Parse(strings.NewReader("<html><body>" + body + "</body></html>"))
	if err != nil {
		panic(err)
	}
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
}

func (p *fakePage) count(loc entities.Locator) (int, error) {
	p.mu.Lock()
	doc := p.doc
	p.mu.Unlock()

	if loc.Kind == entities.KindXPath {
		nodes, err := htmlquery.QueryAll(doc, loc.Selector)
		if err != nil {
			return 0, err
		}
		return len(nodes), nil
	}
	return goquery.NewDocumentFromNode(doc).Find("body").Find(loc.Selector).Length(), nil
}

func (p *fakePage) Evaluate(ctx context.Context, fn string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.evaluations = append(p.evaluations, fn)
	p.evaluateArgs = append(p.evaluateArgs, arg)
	doc := p.doc
	p.mu.Unlock()

	s, ok := arg.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected argument %T", arg)
	}
	switch fn {
	case CSSCountScript:
		return goquery.NewDocumentFromNode(doc).Find("body").Find(s).Length(), nil
	case XPathNumberScript:
		expr, err := xpath.Compile(s)
		if err != nil {
			return nil, err
		}
		return expr.Evaluate(htmlquery.CreateXPathNavigator(doc)), nil
	case XPathSnapshotScript:
		nodes, err := htmlquery.QueryAll(doc, s)
		if err != nil {
			return nil, err
		}
		return float64(len(nodes)), nil
	}
	return nil, fmt.Errorf("unknown script %q", fn)
}

func (p *fakePage) Query(locator entities.Locator) interfaces.Chain {
	return &fakeChain{page: p, locator: locator}
}

func (p *fakePage) ViewportHeight() int { return p.viewport }

func (p *fakePage) Navigate(ctx context.Context, url string) error { return nil }

func (p *fakePage) Close() error { return nil }

type fakeChain struct {
	page    *fakePage
	locator entities.Locator
}

func (c *fakeChain) Locator() entities.Locator { return c.locator }

func (c *fakeChain) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.page.count(c.locator)
}

func (c *fakeChain) resolve(ctx context.Context) error {
	n, err := c.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return entities.NoElementError(c.locator.Selector)
	}
	return nil
}

func (c *fakeChain) Click(ctx context.Context, opts entities.ClickOptions) error {
	if err := c.resolve(ctx); err != nil {
		return err
	}
	c.page.mu.Lock()
	defer c.page.mu.Unlock()
	c.page.clicks = append(c.page.clicks, clickCall{selector: c.locator.Selector, opts: opts})
	return nil
}

func (c *fakeChain) DoubleClick(ctx context.Context, opts entities.ClickOptions) error {
	if err := c.resolve(ctx); err != nil {
		return err
	}
	c.page.mu.Lock()
	defer c.page.mu.Unlock()
	c.page.clicks = append(c.page.clicks, clickCall{selector: c.locator.Selector, double: true, opts: opts})
	return nil
}

func (c *fakeChain) ScrollIntoView(ctx context.Context, offset entities.ScrollOffset) error {
	if err := c.resolve(ctx); err != nil {
		return err
	}
	c.page.mu.Lock()
	defer c.page.mu.Unlock()
	c.page.scrolls = append(c.page.scrolls, scrollCall{selector: c.locator.Selector, offset: offset})
	return nil
}
