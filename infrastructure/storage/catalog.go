package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// LocatorCatalog is a LocatorStore loaded from a YAML file of the form
//
//	login:
//	  username: {selector: "#username"}
//	  submit: {selector: "//button[text()='%s']", type: button}
//
// Entries are addressed as "page.name".
type LocatorCatalog struct {
	locators map[string]entities.Locator
}

var _ interfaces.LocatorStore = (*LocatorCatalog)(nil)

// NewLocatorCatalog - creates an empty catalog
func NewLocatorCatalog() *LocatorCatalog {
	return &LocatorCatalog{locators: make(map[string]entities.Locator)}
}

// LoadLocatorCatalog - reads a catalog from path
func LoadLocatorCatalog(path string) (*LocatorCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locator catalog: %w", err)
	}
	return ParseLocatorCatalog(data)
}

// ParseLocatorCatalog - decodes catalog YAML
func ParseLocatorCatalog(data []byte) (*LocatorCatalog, error) {
	var pages map[string]map[string]entities.Locator
	if err := yaml.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse locator catalog: %w", err)
	}

	c := NewLocatorCatalog()
	for page, entries := range pages {
		for name, loc := range entries {
			if err := c.Add(page+"."+name, loc); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Add - registers a locator under name
func (c *LocatorCatalog) Add(name string, loc entities.Locator) error {
	if strings.TrimSpace(loc.Selector) == "" {
		return fmt.Errorf("locator %s has an empty selector", name)
	}
	if loc.Kind != "" && !loc.Kind.Valid() {
		return fmt.Errorf("locator %s has unknown kind %q", name, loc.Kind)
	}
	c.locators[name] = loc.Normalized()
	return nil
}

// Lookup - returns the locator registered under name
func (c *LocatorCatalog) Lookup(name string) (entities.Locator, bool) {
	loc, ok := c.locators[name]
	return loc, ok
}

// Names - returns all registered names, sorted
func (c *LocatorCatalog) Names() []string {
	names := make([]string, 0, len(c.locators))
	for name := range c.locators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScenario - reads a YAML scenario file
func LoadScenario(path string) (*entities.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var sc entities.Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", sc.Name)
	}
	sc.Status = entities.ScenarioPending
	return &sc, nil
}

type reportDir struct {
	dir string
	now func() time.Time
}

// NewReportStore - creates a ReportStore writing JSON reports into dir
func NewReportStore(dir string) (interfaces.ReportStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &reportDir{dir: dir, now: time.Now}, nil
}

type report struct {
	Scenario string                `json:"scenario"`
	URL      string                `json:"url,omitempty"`
	Status   string                `json:"status"`
	Finished time.Time             `json:"finished"`
	Results  []entities.StepResult `json:"results"`
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SaveReport - writes the results of one scenario run to <dir>/<name>-<timestamp>.json
func (r *reportDir) SaveReport(sc *entities.Scenario, results []entities.StepResult) error {
	now := r.now()
	data, err := json.MarshalIndent(report{
		Scenario: sc.Name,
		URL:      sc.URL,
		Status:   string(sc.Status),
		Finished: now,
		Results:  results,
	}, "", "  ")
	if err != nil {
		return err
	}

	name := unsafeChars.ReplaceAllString(sc.Name, "_")
	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.json", name, now.Format("20060102T150405")))
	return os.WriteFile(path, data, 0644)
}
