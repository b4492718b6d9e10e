package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/application/element"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Runner executes scenarios step by step through element handles
type Runner struct {
	engine         interfaces.Engine
	locators       interfaces.LocatorStore
	reports        interfaces.ReportStore
	logger         logrus.FieldLogger
	defaultTimeout time.Duration
	elementOpts    []element.Option
}

// Option configures a Runner
type Option func(*Runner)

// WithLocators - resolves step targets through store before treating them as selectors
func WithLocators(store interfaces.LocatorStore) Option {
	return func(r *Runner) { r.locators = store }
}

// WithReports - saves a report after every scenario
func WithReports(store interfaces.ReportStore) Option {
	return func(r *Runner) { r.reports = store }
}

// WithDefaultTimeout - timeout for wait steps that name none
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Runner) { r.defaultTimeout = d }
}

// WithElementOptions - options applied to every element handle the runner builds
func WithElementOptions(opts ...element.Option) Option {
	return func(r *Runner) { r.elementOpts = append(r.elementOpts, opts...) }
}

// NewRunner - creates new runner instance
func NewRunner(engine interfaces.Engine, logger logrus.FieldLogger, opts ...Option) *Runner {
	r := &Runner{
		engine:         engine,
		logger:         logger,
		defaultTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.elementOpts = append([]element.Option{element.WithLogger(logger)}, r.elementOpts...)
	return r
}

// Element - builds a handle for target, a catalog name or a raw selector,
// with values filled into its placeholders
func (r *Runner) Element(target string, values ...string) (*element.Element, error) {
	if target == "" {
		return nil, errors.New("step has no target")
	}

	var el *element.Element
	if r.locators != nil {
		if loc, ok := r.locators.Lookup(target); ok {
			el = element.FromLocator(r.engine, loc, r.elementOpts...)
		}
	}
	if el == nil {
		el = element.New(r.engine, target, r.elementOpts...)
	}

	if len(values) > 0 {
		args := make([]any, len(values))
		for i, v := range values {
			args[i] = v
		}
		el.SetDynamicValue(args...)
	}
	return el, nil
}

// Run - executes every step of sc, stopping at the first failure
func (r *Runner) Run(ctx context.Context, sc *entities.Scenario) ([]entities.StepResult, error) {
	log := r.logger.WithField("scenario", sc.Name)
	log.Info("Scenario started")
	sc.Status = entities.ScenarioRunning

	results := make([]entities.StepResult, 0, len(sc.Steps))
	steps := sc.Steps
	if sc.URL != "" {
		steps = append([]entities.Step{{Type: entities.StepNavigate, URL: sc.URL}}, steps...)
	}

	var runErr error
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			sc.Status = entities.ScenarioCancelled
			runErr = fmt.Errorf("scenario canceled: %w", err)
			break
		}

		res := r.ExecuteStep(ctx, step)
		results = append(results, res)
		log.WithFields(logrus.Fields{"step": i + 1, "type": step.Type, "success": res.Success}).Info(res.Message)

		if !res.Success {
			if ctx.Err() != nil {
				sc.Status = entities.ScenarioCancelled
				runErr = fmt.Errorf("scenario canceled: %w", ctx.Err())
			} else {
				sc.Status = entities.ScenarioFailed
				runErr = fmt.Errorf("step %d (%s) failed: %s", i+1, step.Type, res.Error)
			}
			break
		}
	}
	if runErr == nil {
		sc.Status = entities.ScenarioPassed
	}

	if r.reports != nil {
		if err := r.reports.SaveReport(sc, results); err != nil {
			log.WithError(err).Warn("Failed to save report")
		}
	}
	return results, runErr
}

// ExecuteStep - executes single step
func (r *Runner) ExecuteStep(ctx context.Context, step entities.Step) entities.StepResult {
	start := time.Now()
	res := entities.StepResult{Step: step}

	msg, count, err := r.executeStep(ctx, step, &res)
	res.Duration = time.Since(start)
	res.Count = count
	if err != nil {
		res.Error = err.Error()
		res.Message = fmt.Sprintf("%s failed", step.Type)
		return res
	}
	res.Success = true
	res.Message = msg
	return res
}

func (r *Runner) executeStep(ctx context.Context, step entities.Step, res *entities.StepResult) (string, *int, error) {
	if step.Type == entities.StepNavigate {
		if step.URL == "" {
			return "", nil, errors.New("url is required for navigate step")
		}
		if err := r.engine.Navigate(ctx, step.URL); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Navigated to %s", step.URL), nil, nil
	}

	el, err := r.Element(step.Target, step.Values...)
	if err != nil {
		return "", nil, err
	}
	selector := el.Locator().Selector
	res.Selector = selector

	timeout := r.defaultTimeout
	if step.TimeoutMs > 0 {
		timeout = time.Duration(step.TimeoutMs) * time.Millisecond
	}

	switch step.Type {
	case entities.StepClick:
		if err := el.Click(ctx); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Clicked %s", selector), nil, nil

	case entities.StepDoubleClick:
		if err := el.DoubleClickWOScroll(ctx); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Double-clicked %s", selector), nil, nil

	case entities.StepWaitVisible:
		if err := el.WaitForVisible(ctx, timeout); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s is visible", selector), nil, nil

	case entities.StepWaitInvisible:
		if err := el.WaitForInvisible(ctx, timeout); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s is gone", selector), nil, nil

	case entities.StepScroll:
		if _, err := el.ScrollIntoView(ctx); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Scrolled to %s", selector), nil, nil

	case entities.StepExists:
		ok, err := el.IsExistent(ctx)
		if err != nil {
			return "", nil, err
		}
		n := 0
		if ok {
			n = 1
		}
		if step.Expect != nil && (*step.Expect != 0) != ok {
			return "", &n, fmt.Errorf("expected %s to exist: %t, got %t", selector, *step.Expect != 0, ok)
		}
		return fmt.Sprintf("%s exists: %t", selector, ok), &n, nil

	case entities.StepCount:
		n, err := el.Length(ctx)
		if err != nil {
			return "", nil, err
		}
		if step.Expect != nil && *step.Expect != n {
			return "", &n, fmt.Errorf("expected %d elements for %s, got %d", *step.Expect, selector, n)
		}
		return fmt.Sprintf("%s matches %d elements", selector, n), &n, nil

	default:
		return "", nil, fmt.Errorf("unknown step type: %s", step.Type)
	}
}
