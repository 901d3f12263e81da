package types

import (
	"fmt"
	"strings"
)

// BrowserAction is a closed set of instructions executable against a
// browser session. Implementations are ClickAction, ScrollAction,
// NavigateAction, TypeAction, and HighlightAction; each carries only
// the fields its kind needs.
type BrowserAction interface {
	// Kind returns the wire name of the action type.
	Kind() string

	// Describe returns the human-readable description of the action.
	Describe() string

	isBrowserAction()
}

// ClickAction clicks the first element matching Selector.
type ClickAction struct {
	Selector    string
	Description string
}

// ScrollAction scrolls the page vertically. Direction is "up" or
// "down"; Amount is in pixels.
type ScrollAction struct {
	Direction   string
	Amount      int
	Description string
}

// NavigateAction loads a new URL in the session's page.
type NavigateAction struct {
	URL         string
	Description string
}

// TypeAction types Text into the element matching Selector.
type TypeAction struct {
	Selector    string
	Text        string
	Description string
}

// HighlightAction visually marks an element for explanation. It is
// also the designed fallback when a command cannot be translated into
// a more specific action; in that case Selector may be empty and the
// action has no browser side effect.
type HighlightAction struct {
	Selector    string
	Description string
}

func (a ClickAction) Kind() string     { return "click" }
func (a ScrollAction) Kind() string    { return "scroll" }
func (a NavigateAction) Kind() string  { return "navigate" }
func (a TypeAction) Kind() string      { return "type" }
func (a HighlightAction) Kind() string { return "highlight" }

func (a ClickAction) Describe() string     { return a.Description }
func (a ScrollAction) Describe() string    { return a.Description }
func (a NavigateAction) Describe() string  { return a.Description }
func (a TypeAction) Describe() string      { return a.Description }
func (a HighlightAction) Describe() string { return a.Description }

func (ClickAction) isBrowserAction()     {}
func (ScrollAction) isBrowserAction()    {}
func (NavigateAction) isBrowserAction()  {}
func (TypeAction) isBrowserAction()      {}
func (HighlightAction) isBrowserAction() {}

// DefaultScrollAmount is the pixel distance used when a scroll action
// does not specify one.
const DefaultScrollAmount = 300

// ActionPayload is the loosely-typed wire form of a BrowserAction, as
// produced by the completion provider and as serialized over HTTP.
// Only the fields relevant to Type are populated.
type ActionPayload struct {
	Type        string `json:"type"`
	Target      string `json:"target,omitempty"`
	Value       string `json:"value,omitempty"`
	Direction   string `json:"direction,omitempty"`
	Amount      int    `json:"amount,omitempty"`
	Description string `json:"description"`
}

// ParseAction converts a wire payload into a typed BrowserAction. It
// returns an error for unknown or incomplete payloads; callers at the
// provider boundary treat that as malformed model output and fall back.
func ParseAction(p ActionPayload) (BrowserAction, error) {
	switch strings.ToLower(strings.TrimSpace(p.Type)) {
	case "click":
		if p.Target == "" {
			return nil, fmt.Errorf("click action requires a target selector")
		}
		return ClickAction{Selector: p.Target, Description: p.Description}, nil
	case "scroll":
		direction := strings.ToLower(p.Direction)
		if direction != "up" {
			direction = "down"
		}
		amount := p.Amount
		if amount <= 0 {
			amount = DefaultScrollAmount
		}
		return ScrollAction{Direction: direction, Amount: amount, Description: p.Description}, nil
	case "navigate":
		url := p.Target
		if url == "" {
			url = p.Value
		}
		if url == "" {
			return nil, fmt.Errorf("navigate action requires a url")
		}
		return NavigateAction{URL: url, Description: p.Description}, nil
	case "type":
		if p.Target == "" {
			return nil, fmt.Errorf("type action requires a target selector")
		}
		return TypeAction{Selector: p.Target, Text: p.Value, Description: p.Description}, nil
	case "highlight":
		return HighlightAction{Selector: p.Target, Description: p.Description}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", p.Type)
	}
}

// PayloadFor converts a typed BrowserAction back to its wire form.
func PayloadFor(action BrowserAction) ActionPayload {
	switch a := action.(type) {
	case ClickAction:
		return ActionPayload{Type: "click", Target: a.Selector, Description: a.Description}
	case ScrollAction:
		return ActionPayload{Type: "scroll", Direction: a.Direction, Amount: a.Amount, Description: a.Description}
	case NavigateAction:
		return ActionPayload{Type: "navigate", Target: a.URL, Description: a.Description}
	case TypeAction:
		return ActionPayload{Type: "type", Target: a.Selector, Value: a.Text, Description: a.Description}
	case HighlightAction:
		return ActionPayload{Type: "highlight", Target: a.Selector, Description: a.Description}
	default:
		return ActionPayload{Type: action.Kind(), Description: action.Describe()}
	}
}
