package speech

import "sync"

// Feed is an in-process Listener fed by whatever transport delivers
// user commands. Submitting after Stop is a silent drop.
type Feed struct {
	mu     sync.Mutex
	ch     chan Transcript
	closed bool
}

// NewFeed creates a Feed with a small buffer so a slow consumer does
// not block the submitting transport handler.
func NewFeed() *Feed {
	return &Feed{ch: make(chan Transcript, 8)}
}

// Submit delivers a final transcript to the consumer. Returns false
// when the feed is stopped or the buffer is full.
func (f *Feed) Submit(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	select {
	case f.ch <- Transcript{Text: text, Final: true}:
		return true
	default:
		return false
	}
}

// Transcripts returns the consumer side of the feed.
func (f *Feed) Transcripts() <-chan Transcript { return f.ch }

// Stop closes the feed. Safe to call more than once.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}
