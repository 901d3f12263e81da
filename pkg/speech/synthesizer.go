package speech

import (
	"context"
	"errors"
)

// ErrSynthesisUnavailable means the page has no speechSynthesis API or
// playback failed before completing.
var ErrSynthesisUnavailable = errors.New("speech synthesis unavailable in page")

// ScriptRunner evaluates JavaScript in a live page. The browser session
// satisfies this.
type ScriptRunner interface {
	RunScript(script string, arg interface{}) (interface{}, error)
}

// speakScript voices text through the page's speechSynthesis API,
// preferring an enhanced English voice, and resolves when the utterance
// finishes.
const speakScript = `(text) => new Promise((resolve) => {
	if (!('speechSynthesis' in window)) { resolve(false); return; }
	const utterance = new SpeechSynthesisUtterance(text);
	utterance.rate = 0.9;
	utterance.pitch = 1;
	utterance.volume = 0.8;
	const voices = speechSynthesis.getVoices();
	const preferred = voices.find((v) =>
		v.lang.startsWith('en') &&
		(v.name.includes('Neural') || v.name.includes('Enhanced')));
	if (preferred) { utterance.voice = preferred; }
	utterance.onend = () => resolve(true);
	utterance.onerror = () => resolve(false);
	speechSynthesis.speak(utterance);
})`

// PageSpeaker voices narration through the session's own page, so the
// demo sounds from the same browser the user is watching.
type PageSpeaker struct {
	runner ScriptRunner
}

// NewPageSpeaker wraps a live page's script runner as a Speaker.
func NewPageSpeaker(runner ScriptRunner) *PageSpeaker {
	return &PageSpeaker{runner: runner}
}

// Speak plays text and blocks until the utterance completes. Navigating
// the page mid-utterance cuts playback short; that surfaces as
// ErrSynthesisUnavailable.
func (p *PageSpeaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := p.runner.RunScript(speakScript, text)
	if err != nil {
		return err
	}
	if spoken, ok := result.(bool); ok && !spoken {
		return ErrSynthesisUnavailable
	}
	return nil
}

// ForHandle returns a page-backed speaker when the handle can run
// scripts, and a NoopSpeaker otherwise.
func ForHandle(handle interface{}) Speaker {
	if runner, ok := handle.(ScriptRunner); ok {
		return NewPageSpeaker(runner)
	}
	return NoopSpeaker{}
}
