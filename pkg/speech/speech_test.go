package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	result interface{}
	err    error

	lastScript string
	lastArg    interface{}
	calls      int
}

func (f *fakeRunner) RunScript(script string, arg interface{}) (interface{}, error) {
	f.calls++
	f.lastScript = script
	f.lastArg = arg
	return f.result, f.err
}

func TestPageSpeaker_Speak(t *testing.T) {
	runner := &fakeRunner{result: true}
	speaker := NewPageSpeaker(runner)

	err := speaker.Speak(context.Background(), "Welcome to the demo.")

	require.NoError(t, err)
	assert.Equal(t, "Welcome to the demo.", runner.lastArg)
	assert.Contains(t, runner.lastScript, "speechSynthesis")
}

func TestPageSpeaker_EmptyTextIsNoop(t *testing.T) {
	runner := &fakeRunner{}
	speaker := NewPageSpeaker(runner)

	require.NoError(t, speaker.Speak(context.Background(), ""))
	assert.Zero(t, runner.calls)
}

func TestPageSpeaker_UnsupportedPage(t *testing.T) {
	speaker := NewPageSpeaker(&fakeRunner{result: false})

	err := speaker.Speak(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSynthesisUnavailable)
}

func TestPageSpeaker_RunnerError(t *testing.T) {
	boom := errors.New("page crashed")
	speaker := NewPageSpeaker(&fakeRunner{err: boom})

	assert.ErrorIs(t, speaker.Speak(context.Background(), "hello"), boom)
}

func TestPageSpeaker_CancelledContext(t *testing.T) {
	runner := &fakeRunner{result: true}
	speaker := NewPageSpeaker(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, speaker.Speak(ctx, "hello"))
	assert.Zero(t, runner.calls)
}

func TestForHandle(t *testing.T) {
	_, isPage := ForHandle(&fakeRunner{}).(*PageSpeaker)
	assert.True(t, isPage)

	_, isNoop := ForHandle(struct{}{}).(NoopSpeaker)
	assert.True(t, isNoop)
}

func TestFeed_SubmitAndStop(t *testing.T) {
	feed := NewFeed()

	require.True(t, feed.Submit("scroll down"))

	got := <-feed.Transcripts()
	assert.Equal(t, "scroll down", got.Text)
	assert.True(t, got.Final)

	feed.Stop()
	assert.False(t, feed.Submit("too late"))

	_, open := <-feed.Transcripts()
	assert.False(t, open)

	feed.Stop()
}

func TestFeed_FullBufferDrops(t *testing.T) {
	feed := NewFeed()
	defer feed.Stop()

	for i := 0; i < 8; i++ {
		require.True(t, feed.Submit("cmd"))
	}
	assert.False(t, feed.Submit("overflow"))
}
