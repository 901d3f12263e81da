package demo

import (
	"sync"
	"time"

	"github.com/entrhq/tourguide/pkg/browser"
	"github.com/entrhq/tourguide/pkg/speech"
	"github.com/entrhq/tourguide/pkg/tour"
)

// Status is the session lifecycle status.
type Status string

const (
	// StatusInitializing means the browser is up but the tour has not
	// started.
	StatusInitializing Status = "initializing"

	// StatusRunning means the automated tour is in progress.
	StatusRunning Status = "running"

	// StatusCompleted means the tour has finished; the session is
	// interactive.
	StatusCompleted Status = "completed"

	// StatusEnded means the browser has been released. The record
	// remains so repeated closes stay no-ops.
	StatusEnded Status = "ended"
)

// session is one live demo run: a browser handle, its tour, and the
// speaker voicing narration through the page. The record outlives the
// handle; after close the handle is nil and status is Ended.
type session struct {
	mu       sync.Mutex
	id       string
	mainURL  string
	pageURLs []string

	handle  browser.Handle
	tour    *tour.Tour
	speaker speech.Speaker

	createdAt time.Time
	lastUsed  time.Time
	ended     bool
}

// touch records activity for the idle sweep.
func (s *session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *session) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// end releases the browser handle. Idempotent.
func (s *session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.ended = true
	s.tour.End()
	if s.handle != nil {
		_ = s.handle.Close()
		s.handle = nil
	}
}

// liveHandle returns the browser handle, or ErrSessionEnded once the
// session has been closed.
func (s *session) liveHandle() (browser.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended || s.handle == nil {
		return nil, ErrSessionEnded
	}
	return s.handle, nil
}

// status derives the lifecycle status from the ended flag and the tour
// state machine.
func (s *session) status() Status {
	s.mu.Lock()
	ended := s.ended
	s.mu.Unlock()

	if ended {
		return StatusEnded
	}

	switch s.tour.State() {
	case tour.StateRunning:
		return StatusRunning
	case tour.StateCompleted, tour.StateEnded:
		return StatusCompleted
	default:
		return StatusInitializing
	}
}

// SessionInfo is the externally visible summary of a session.
type SessionInfo struct {
	ID         string    `json:"id"`
	MainURL    string    `json:"mainUrl"`
	PageURLs   []string  `json:"pageUrls"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

func (s *session) info() SessionInfo {
	status := s.status()

	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, len(s.pageURLs))
	copy(urls, s.pageURLs)

	return SessionInfo{
		ID:         s.id,
		MainURL:    s.mainURL,
		PageURLs:   urls,
		Status:     status,
		CreatedAt:  s.createdAt,
		LastUsedAt: s.lastUsed,
	}
}
