// Package types defines the shared data model for the tour engine:
// page content snapshots, tour steps, browser actions, and the message
// types exchanged with LLM providers.
package types

// ButtonElement is a clickable element discovered on a page.
type ButtonElement struct {
	// Text is the visible label of the element.
	Text string `json:"text"`

	// Selector is a best-effort CSS selector for the element. It is
	// synthesized from the tag name, id, and first class token and is
	// not guaranteed to be unique on the page.
	Selector string `json:"selector"`
}

// LinkElement is an anchor discovered on a page.
type LinkElement struct {
	Text     string `json:"text"`
	Href     string `json:"href"`
	Selector string `json:"selector"`
}

// FormDescriptor summarizes a form and its inputs.
type FormDescriptor struct {
	// Inputs holds one entry per input/textarea/select, using the
	// placeholder, then the name, then the tag name as the label.
	Inputs []string `json:"inputs"`

	// Action is the form's submit target, if any.
	Action string `json:"action,omitempty"`
}

// PageContent is a structured snapshot of a loaded page. It is
// immutable once produced; one instance is created per page visit.
type PageContent struct {
	URL      string           `json:"url"`
	Title    string           `json:"title"`
	Headings []string         `json:"headings"`
	Buttons  []ButtonElement  `json:"buttons"`
	Links    []LinkElement    `json:"links"`
	Forms    []FormDescriptor `json:"forms"`

	// MainContent is a bounded text excerpt of the page body.
	MainContent string `json:"mainContent"`
}

// TourStep records one visited page of a tour: the page snapshot, the
// narration produced for it, and any actions taken on it. Write-once,
// appended to tour history in visit order.
type TourStep struct {
	PageURL       string          `json:"pageUrl"`
	PageContent   PageContent     `json:"pageContent"`
	NarrationText string          `json:"narrationText"`
	Actions       []ActionPayload `json:"actions"`
}
