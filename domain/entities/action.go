package entities

import "time"

// StepType represents the type of step a scenario can perform
type StepType string

const (
	StepNavigate      StepType = "navigate"
	StepClick         StepType = "click"
	StepDoubleClick   StepType = "double_click"
	StepWaitVisible   StepType = "wait_visible"
	StepWaitInvisible StepType = "wait_invisible"
	StepExists        StepType = "exists"
	StepCount         StepType = "count"
	StepScroll        StepType = "scroll"
)

// Step represents a single interaction with the page
type Step struct {
	Type StepType `json:"type" yaml:"type"`
	// Target is a locator catalog name ("page.name") or a raw selector.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// Values fill the target selector's placeholders.
	Values    []string `json:"values,omitempty" yaml:"values,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
	TimeoutMs int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	// Expect is the required count for count steps; for exists steps
	// zero means "must not exist" and anything else "must exist".
	Expect      *int   `json:"expect,omitempty" yaml:"expect,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// StepResult represents the result of a step
type StepResult struct {
	Step     Step          `json:"step"`
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Selector string        `json:"selector,omitempty"`
	Count    *int          `json:"count,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
