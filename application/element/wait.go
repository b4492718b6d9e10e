package element

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
)

// DefaultPollInterval is how often waits re-query the page
const DefaultPollInterval = 200 * time.Millisecond

// pollUntil evaluates cond immediately and then every interval until it
// holds, the timeout elapses or ctx is done. Errors from cond are treated
// as transient and retried. A timeout of zero or less checks exactly once.
func pollUntil(ctx context.Context, interval, timeout time.Duration, logger logrus.FieldLogger, cond func(ctx context.Context) (bool, error)) (lastErr error, err error) {
	if timeout <= 0 {
		ok, condErr := cond(ctx)
		switch {
		case condErr == nil && ok:
			return nil, nil
		case ctx.Err() != nil:
			return condErr, fmt.Errorf("wait canceled: %w", ctx.Err())
		}
		return condErr, entities.ErrTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, condErr := cond(timeoutCtx)
		if condErr == nil && ok {
			return nil, nil
		}
		if condErr != nil && timeoutCtx.Err() == nil {
			lastErr = condErr
			logger.WithError(condErr).Debug("Poll attempt failed, retrying")
		}

		select {
		case <-ticker.C:
		case <-timeoutCtx.Done():
			if ctx.Err() != nil {
				return lastErr, fmt.Errorf("wait canceled: %w", ctx.Err())
			}
			return lastErr, entities.ErrTimeout
		}
	}
}

func (e *Element) waitFor(ctx context.Context, state entities.VisibilityState, timeout time.Duration) error {
	chain := e.Chain()
	selector := chain.Locator().Selector
	log := e.logger.WithFields(logrus.Fields{"selector": selector, "state": state, "timeout": timeout})
	log.Debug("Waiting for element")

	lastErr, err := pollUntil(ctx, e.pollInterval, timeout, log, func(ctx context.Context) (bool, error) {
		n, err := chain.Count(ctx)
		if err != nil {
			return false, err
		}
		if state == entities.StateVisible {
			return n > 0, nil
		}
		return n == 0, nil
	})
	if err == entities.ErrTimeout {
		return &entities.TimeoutError{
			Selector: selector,
			State:    state,
			Timeout:  timeout,
			Last:     lastErr,
		}
	}
	return err
}
