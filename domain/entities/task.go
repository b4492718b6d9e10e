package entities

// Scenario represents an ordered list of steps run against one page
type Scenario struct {
	Name   string         `json:"name" yaml:"name"`
	URL    string         `json:"url,omitempty" yaml:"url,omitempty"`
	Status ScenarioStatus `json:"status" yaml:"-"`
	Steps  []Step         `json:"steps" yaml:"steps"`
}

// ScenarioStatus represents the status of a scenario
type ScenarioStatus string

const (
	ScenarioPending   ScenarioStatus = "pending"
	ScenarioRunning   ScenarioStatus = "running"
	ScenarioPassed    ScenarioStatus = "passed"
	ScenarioFailed    ScenarioStatus = "failed"
	ScenarioCancelled ScenarioStatus = "cancelled"
)
