// Package browser provides playwright-backed browser automation for
// tour sessions. A Runtime owns the playwright driver process; each
// Session wraps one browser+page pair and exposes the bounded set of
// primitives the tour engine needs.
package browser

import (
	"errors"

	"github.com/entrhq/tourguide/pkg/types"
)

// ErrElementNotFound indicates a selector resolved to no element on
// the current page. It is recoverable: callers should report it but
// not treat it as fatal to the session.
var ErrElementNotFound = errors.New("element not found")

// ErrNavigationTimeout indicates a page did not reach network-idle
// within the configured timeout.
var ErrNavigationTimeout = errors.New("navigation timeout")

// Handle is one controllable browser+page pair. Exactly one Handle
// exists per live session. Operations on the same Handle are
// serialized internally; callers still must not issue a dependent
// action before the previous one returns.
type Handle interface {
	// Navigate loads url and blocks until the page reaches
	// network-idle.
	Navigate(url string) error

	// Click clicks the first element matching selector. Returns
	// ErrElementNotFound if the selector resolves to nothing.
	Click(selector string) error

	// Scroll scrolls the page vertically. Direction is "up" or
	// "down"; amount is in pixels.
	Scroll(direction string, amount int) error

	// Type fills the element matching selector with text. Returns
	// ErrElementNotFound if the selector resolves to nothing.
	Type(selector, text string) error

	// Highlight visually marks the element matching selector. An
	// empty selector is a no-op. Returns ErrElementNotFound if the
	// selector resolves to nothing.
	Highlight(selector string) error

	// Screenshot captures the viewport as a PNG data URL.
	Screenshot() (string, error)

	// ExtractContent produces a structured snapshot of the current
	// page.
	ExtractContent() (types.PageContent, error)

	// CurrentURL returns the URL of the currently loaded page.
	CurrentURL() string

	// Close releases the underlying browser resources. It is
	// idempotent: closing an already-closed handle is a no-op.
	Close() error
}
