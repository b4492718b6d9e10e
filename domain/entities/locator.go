package entities

import "strings"

// SelectorKind is the query language a selector is written in
type SelectorKind string

const (
	KindCSS   SelectorKind = "css"
	KindXPath SelectorKind = "xpath"
)

// ElementType classifies what a locator points at. Carried for callers,
// never interpreted by element handles.
type ElementType string

const (
	ElementButton   ElementType = "button"
	ElementLink     ElementType = "link"
	ElementInput    ElementType = "input"
	ElementCheckbox ElementType = "checkbox"
	ElementSelect   ElementType = "select"
	ElementText     ElementType = "text"
)

// Locator describes how to find an element on a page
type Locator struct {
	Selector      string       `json:"selector" yaml:"selector"`
	Kind          SelectorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	GroupSelector string       `json:"group,omitempty" yaml:"group,omitempty"`
	Type          ElementType  `json:"type,omitempty" yaml:"type,omitempty"`
	Reload        *bool        `json:"reload,omitempty" yaml:"reload,omitempty"`
}

// NewLocator - promotes a bare selector to a locator with all optional fields unset
func NewLocator(selector string) Locator {
	return Locator{
		Selector: selector,
		Kind:     DetectKind(selector),
	}
}

// Normalized returns the locator with Kind filled in when it was left empty.
func (l Locator) Normalized() Locator {
	if l.Kind == "" {
		l.Kind = DetectKind(l.Selector)
	}
	return l
}

// IsXPath reports whether the locator is queried as XPath
func (l Locator) IsXPath() bool {
	return l.Normalized().Kind == KindXPath
}

// DetectKind - infers the query language from the selector's leading characters
func DetectKind(selector string) SelectorKind {
	s := strings.TrimSpace(selector)
	for _, prefix := range []string{"/", "./", "../", "("} {
		if strings.HasPrefix(s, prefix) {
			return KindXPath
		}
	}
	return KindCSS
}

// Valid reports whether k is a known kind
func (k SelectorKind) Valid() bool {
	return k == KindCSS || k == KindXPath
}
