// Package tour implements the automated walkthrough state machine. A
// Tour drives one browser session through an ordered list of page URLs,
// extracting content and requesting narration per page. Pacing between
// steps (waiting for narration playback) belongs to the caller: Advance
// orders the effects within one step and returns.
package tour

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/tourguide/pkg/browser"
	"github.com/entrhq/tourguide/pkg/logging"
	"github.com/entrhq/tourguide/pkg/types"
)

// State is the tour lifecycle state.
type State string

const (
	// StateNotStarted is the initial state before Start.
	StateNotStarted State = "not_started"

	// StateRunning means pages remain to be visited.
	StateRunning State = "running"

	// StateCompleted means every page has been visited.
	StateCompleted State = "completed"

	// StateEnded is the absorbing teardown state, reachable from any
	// other state via End.
	StateEnded State = "ended"
)

// ErrNoPages is returned by Start when the page list is empty.
var ErrNoPages = errors.New("tour requires at least one page URL")

// ErrNotRunning is returned by Advance when the tour has not been
// started or has been ended.
var ErrNotRunning = errors.New("tour is not running")

// Narrator produces narration for a page given the pages already
// visited. Implementations must not fail; degraded narration is still
// narration.
type Narrator interface {
	Narrate(ctx context.Context, page types.PageContent, visited []types.PageContent) string
}

// Progress is a snapshot of how far the tour has advanced.
type Progress struct {
	CurrentIndex int              `json:"currentIndex"`
	TotalPages   int              `json:"totalPages"`
	State        State            `json:"state"`
	Steps        []types.TourStep `json:"steps"`
}

// StepResult reports the outcome of one Advance call.
type StepResult struct {
	// HasNextPage is true while pages remain after this step.
	HasNextPage bool `json:"hasNextPage"`

	// NextPageURL is the page the next Advance will visit, when
	// HasNextPage is true.
	NextPageURL string `json:"nextPageUrl,omitempty"`

	// TourComplete is true once the last page has been visited.
	TourComplete bool `json:"tourComplete"`

	// Narration is the text to play back for this step. Empty when
	// the step was skipped due to a local failure.
	Narration string `json:"narration,omitempty"`

	// Step is the recorded tour step, nil when the step was skipped.
	Step *types.TourStep `json:"step,omitempty"`
}

// Tour sequences the automated walkthrough for one session. Methods
// are safe for concurrent use, though callers are expected to serialize
// operations per session anyway.
type Tour struct {
	mu       sync.Mutex
	handle   browser.Handle
	narrator Narrator
	logger   *logging.Logger
	pages    []string
	index    int
	state    State
	steps    []types.TourStep
	visited  []types.PageContent
}

// New creates a tour bound to a browser handle. logger may be nil.
func New(handle browser.Handle, narrator Narrator, logger *logging.Logger) *Tour {
	return &Tour{
		handle:   handle,
		narrator: narrator,
		logger:   logger,
		state:    StateNotStarted,
	}
}

// Start initializes the walkthrough over pageURLs. It rejects an empty
// list and any state other than NotStarted.
func (t *Tour) Start(pageURLs []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(pageURLs) == 0 {
		return ErrNoPages
	}
	if t.state != StateNotStarted {
		return fmt.Errorf("cannot start tour in state %q", t.state)
	}

	t.pages = append([]string(nil), pageURLs...)
	t.index = 0
	t.state = StateRunning
	return nil
}

// Advance performs one tour step: navigate to the current page unless
// it is already loaded, extract its content, request narration, record
// the step, and move the index forward. A failure in navigation or
// extraction skips the step but still advances, so a single bad page
// never stalls the tour. When the last page has been processed the
// tour transitions to Completed.
func (t *Tour) Advance(ctx context.Context) (StepResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateNotStarted, StateEnded:
		return StepResult{}, fmt.Errorf("%w (state %q)", ErrNotRunning, t.state)
	case StateCompleted:
		return StepResult{TourComplete: true}, nil
	}

	pageURL := t.pages[t.index]
	result := StepResult{}

	if step := t.visitPage(ctx, pageURL); step != nil {
		t.visited = append(t.visited, step.PageContent)
		t.steps = append(t.steps, *step)
		result.Narration = step.NarrationText
		result.Step = step
	}

	t.index++
	if t.index >= len(t.pages) {
		t.state = StateCompleted
	}

	result.HasNextPage = t.index < len(t.pages)
	result.TourComplete = !result.HasNextPage
	if result.HasNextPage {
		result.NextPageURL = t.pages[t.index]
	}
	return result, nil
}

// visitPage performs the per-page effects and returns the recorded
// step, or nil when the page had to be skipped.
func (t *Tour) visitPage(ctx context.Context, pageURL string) *types.TourStep {
	if t.handle.CurrentURL() != pageURL {
		if err := t.handle.Navigate(pageURL); err != nil {
			t.warnf("skipping tour page %s: navigation failed: %v", pageURL, err)
			return nil
		}
	}

	content, err := t.handle.ExtractContent()
	if err != nil {
		t.warnf("skipping tour page %s: content extraction failed: %v", pageURL, err)
		return nil
	}

	narration := t.narrator.Narrate(ctx, content, t.visited)

	return &types.TourStep{
		PageURL:       pageURL,
		PageContent:   content,
		NarrationText: narration,
		Actions:       []types.ActionPayload{},
	}
}

// Progress returns the current index, total page count, and recorded
// steps.
func (t *Tour) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	steps := make([]types.TourStep, len(t.steps))
	copy(steps, t.steps)

	return Progress{
		CurrentIndex: t.index,
		TotalPages:   len(t.pages),
		State:        t.state,
		Steps:        steps,
	}
}

// Visited returns the content snapshots collected so far, in visit
// order.
func (t *Tour) Visited() []types.PageContent {
	t.mu.Lock()
	defer t.mu.Unlock()

	visited := make([]types.PageContent, len(t.visited))
	copy(visited, t.visited)
	return visited
}

// State returns the current lifecycle state.
func (t *Tour) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// End moves the tour to the absorbing Ended state. Safe to call from
// any state, any number of times.
func (t *Tour) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateEnded
}

func (t *Tour) warnf(format string, v ...interface{}) {
	if t.logger != nil {
		t.logger.Warnf(format, v...)
	}
}
