package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ui_automation/application/element"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countEngine answers every query from a fixed selector → count table
type countEngine struct {
	mu       sync.Mutex
	counts   map[string]int
	visited  []string
	clicks   []string
	dblClick []string
	scrolls  []string
}

func newCountEngine(counts map[string]int) *countEngine {
	return &countEngine{counts: counts}
}

func (e *countEngine) count(selector string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[selector]
}

func (e *countEngine) Evaluate(_ context.Context, fn string, arg any) (any, error) {
	s, _ := arg.(string)
	switch fn {
	case element.CSSCountScript, element.XPathSnapshotScript:
		return float64(e.count(s)), nil
	case element.XPathNumberScript:
		return float64(e.count(strings.TrimSuffix(strings.TrimPrefix(s, "count("), ")"))), nil
	}
	return nil, fmt.Errorf("unexpected script %q", fn)
}

func (e *countEngine) Query(locator entities.Locator) interfaces.Chain {
	return &countChain{engine: e, locator: locator}
}

func (e *countEngine) ViewportHeight() int { return 660 }

func (e *countEngine) Navigate(_ context.Context, url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visited = append(e.visited, url)
	return nil
}

func (e *countEngine) Close() error { return nil }

type countChain struct {
	engine  *countEngine
	locator entities.Locator
}

func (c *countChain) Locator() entities.Locator { return c.locator }

func (c *countChain) Count(context.Context) (int, error) {
	return c.engine.count(c.locator.Selector), nil
}

func (c *countChain) record(list *[]string) error {
	if c.engine.count(c.locator.Selector) == 0 {
		return entities.NoElementError(c.locator.Selector)
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	*list = append(*list, c.locator.Selector)
	return nil
}

func (c *countChain) Click(context.Context, entities.ClickOptions) error {
	return c.record(&c.engine.clicks)
}

func (c *countChain) DoubleClick(context.Context, entities.ClickOptions) error {
	return c.record(&c.engine.dblClick)
}

func (c *countChain) ScrollIntoView(context.Context, entities.ScrollOffset) error {
	return c.record(&c.engine.scrolls)
}

type mapLocators map[string]entities.Locator

func (m mapLocators) Lookup(name string) (entities.Locator, bool) {
	loc, ok := m[name]
	return loc, ok
}

func (m mapLocators) Names() []string { return nil }

type memReports struct {
	statuses []entities.ScenarioStatus
	results  [][]entities.StepResult
}

func (m *memReports) SaveReport(sc *entities.Scenario, results []entities.StepResult) error {
	m.statuses = append(m.statuses, sc.Status)
	m.results = append(m.results, results)
	return nil
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intPtr(n int) *int { return &n }

func newTestRunner(engine interfaces.Engine, opts ...Option) *Runner {
	opts = append(opts,
		WithDefaultTimeout(100*time.Millisecond),
		WithElementOptions(element.WithPollInterval(10*time.Millisecond)),
	)
	return NewRunner(engine, quietLogger(), opts...)
}

func TestElementResolution(t *testing.T) {
	engine := newCountEngine(nil)
	r := newTestRunner(engine, WithLocators(mapLocators{
		"login.user": entities.NewLocator("//input[@name='%s']"),
	}))

	el, err := r.Element("login.user", "email")
	require.NoError(t, err)
	assert.Equal(t, "//input[@name='email']", el.Locator().Selector)
	assert.Equal(t, entities.KindXPath, el.Locator().Kind)

	el, err = r.Element("#row-%d", "4")
	require.NoError(t, err)
	assert.Equal(t, "#row-4", el.Locator().Selector)
	assert.Equal(t, entities.KindCSS, el.Locator().Kind)

	// catalog entries are templates and must not be rewritten by a lookup
	el, err = r.Element("login.user")
	require.NoError(t, err)
	assert.Equal(t, "//input[@name='%s']", el.Locator().Selector)

	_, err = r.Element("")
	assert.Error(t, err)
}

func TestRunPasses(t *testing.T) {
	engine := newCountEngine(map[string]int{"li.item": 3, "#save": 1, "//div[@id='dbl']": 1})
	reports := &memReports{}
	r := newTestRunner(engine, WithReports(reports))

	sc := &entities.Scenario{
		Name: "list",
		URL:  "http://example.test/",
		Steps: []entities.Step{
			{Type: entities.StepCount, Target: "li.item", Expect: intPtr(3)},
			{Type: entities.StepExists, Target: "#missing", Expect: intPtr(0)},
			{Type: entities.StepWaitVisible, Target: "#save"},
			{Type: entities.StepWaitInvisible, Target: ".spinner"},
			{Type: entities.StepClick, Target: "#%s", Values: []string{"save"}},
			{Type: entities.StepDoubleClick, Target: "//div[@id='dbl']"},
			{Type: entities.StepScroll, Target: "li.item"},
		},
	}

	results, err := r.Run(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, entities.ScenarioPassed, sc.Status)
	require.Len(t, results, 8)
	for _, res := range results {
		assert.True(t, res.Success, res.Error)
	}

	assert.Equal(t, []string{"http://example.test/"}, engine.visited)
	assert.Equal(t, []string{"#save"}, engine.clicks)
	assert.Equal(t, []string{"//div[@id='dbl']"}, engine.dblClick)
	assert.Equal(t, []string{"#save", "li.item"}, engine.scrolls)

	require.NotNil(t, results[1].Count)
	assert.Equal(t, 3, *results[1].Count)
	assert.Equal(t, "#save", results[5].Selector)

	assert.Equal(t, []entities.ScenarioStatus{entities.ScenarioPassed}, reports.statuses)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	engine := newCountEngine(map[string]int{"li.item": 2})
	reports := &memReports{}
	r := newTestRunner(engine, WithReports(reports))

	sc := &entities.Scenario{
		Name: "failing",
		Steps: []entities.Step{
			{Type: entities.StepCount, Target: "li.item", Expect: intPtr(3)},
			{Type: entities.StepClick, Target: "li.item"},
		},
	}

	results, err := r.Run(context.Background(), sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (count) failed")
	assert.Equal(t, entities.ScenarioFailed, sc.Status)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "expected 3 elements for li.item, got 2")
	assert.Empty(t, engine.clicks)
	assert.Equal(t, []entities.ScenarioStatus{entities.ScenarioFailed}, reports.statuses)
}

func TestExecuteStepErrors(t *testing.T) {
	r := newTestRunner(newCountEngine(nil))
	ctx := context.Background()

	res := r.ExecuteStep(ctx, entities.Step{Type: entities.StepWaitVisible, Target: "#never", TimeoutMs: 30})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Wait for #never visible: timed out after 30ms")

	res = r.ExecuteStep(ctx, entities.Step{Type: entities.StepClick, Target: "#missing"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, entities.ErrNoElement.Error())

	res = r.ExecuteStep(ctx, entities.Step{Type: entities.StepExists, Target: "#missing", Expect: intPtr(1)})
	assert.False(t, res.Success)
	require.NotNil(t, res.Count)
	assert.Equal(t, 0, *res.Count)

	res = r.ExecuteStep(ctx, entities.Step{Type: entities.StepNavigate})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "url is required")

	res = r.ExecuteStep(ctx, entities.Step{Type: "hover", Target: "#a"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown step type: hover")
}

func TestRunCancelled(t *testing.T) {
	r := newTestRunner(newCountEngine(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &entities.Scenario{Name: "cancelled", Steps: []entities.Step{{Type: entities.StepExists, Target: "#a"}}}
	results, err := r.Run(ctx, sc)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, entities.ScenarioCancelled, sc.Status)
}
