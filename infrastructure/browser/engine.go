// Package browser implements interfaces.Engine for the supported browser
// drivers: playwright-go, chromedp, go-rod and selenium.
package browser

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// NewEngine - starts the engine selected by cfg.Driver
func NewEngine(cfg config.Config, logger logrus.FieldLogger) (interfaces.Engine, error) {
	log := logger.WithField("driver", cfg.DriverName())

	var (
		engine interfaces.Engine
		err    error
	)
	switch cfg.DriverName() {
	case config.DriverPlaywright:
		var e *PlaywrightEngine
		if e, err = NewPlaywrightEngine(cfg, log); err == nil {
			engine = e
		}
	case config.DriverChromedp:
		var e *ChromedpEngine
		if e, err = NewChromedpEngine(cfg, log); err == nil {
			engine = e
		}
	case config.DriverRod:
		var e *RodEngine
		if e, err = NewRodEngine(cfg, log); err == nil {
			engine = e
		}
	case config.DriverSelenium:
		var e *SeleniumEngine
		if e, err = NewSeleniumEngine(cfg, log); err == nil {
			engine = e
		}
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver.String)
	}
	if err != nil {
		return nil, err
	}
	return engine, nil
}
