package interfaces

import "ui_automation/domain/entities"

// LocatorStore resolves named locators from a catalog
type LocatorStore interface {
	// Lookup returns the locator registered as "page.name"
	Lookup(name string) (entities.Locator, bool)

	// Names returns every registered name in sorted order
	Names() []string
}

// ReportStore persists scenario run results
type ReportStore interface {
	SaveReport(scenario *entities.Scenario, results []entities.StepResult) error
}
