package entities

// ClickOptions controls how engines perform a click
type ClickOptions struct {
	// Force skips the engine's visibility and actionability checks.
	Force bool
}

// ScrollOffset is added to the element's position after it is scrolled to
// the top-left corner of the viewport. A negative Top leaves room above
// the element. Offsets are CSS pixels and may be fractional.
type ScrollOffset struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}
