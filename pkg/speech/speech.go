// Package speech defines the voice boundary of the demo engine:
// speaking narration aloud and receiving transcribed user commands.
// The engine itself never does audio capture; transcripts arrive from
// whatever front end hosts the demo.
package speech

import "context"

// Transcript is one recognized utterance from the user.
type Transcript struct {
	// Text is the transcribed command.
	Text string `json:"text"`

	// Final marks the transcript as complete rather than interim.
	Final bool `json:"final"`
}

// Speaker plays narration aloud. Speak blocks until playback finishes
// or ctx is done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener yields transcribed user commands until Stop is called or the
// source dries up, whichever comes first.
type Listener interface {
	Transcripts() <-chan Transcript
	Stop()
}

// NoopSpeaker discards narration. Used when the session's browser
// cannot run synthesis or when playback is handled elsewhere.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(context.Context, string) error { return nil }
