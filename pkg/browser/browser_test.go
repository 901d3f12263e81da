package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRuntime_AppliesDefaults(t *testing.T) {
	r := NewRuntime(Options{Headless: true})

	assert.Equal(t, DefaultViewportWidth, r.opts.ViewportWidth)
	assert.Equal(t, DefaultViewportHeight, r.opts.ViewportHeight)
	assert.Equal(t, DefaultTimeout, r.opts.Timeout)
}

func TestNewRuntime_KeepsExplicitOptions(t *testing.T) {
	r := NewRuntime(Options{ViewportWidth: 1920, ViewportHeight: 1080, Timeout: 5000})

	assert.Equal(t, 1920, r.opts.ViewportWidth)
	assert.Equal(t, 1080, r.opts.ViewportHeight)
	assert.Equal(t, 5000.0, r.opts.Timeout)
}

func TestRuntime_LaunchBeforeInitialize(t *testing.T) {
	r := NewRuntime(Options{})

	_, err := r.Launch()
	assert.Error(t, err)
}

func TestRuntime_ShutdownWithoutInitialize(t *testing.T) {
	r := NewRuntime(Options{})

	assert.NoError(t, r.Shutdown())
}

func TestClassifyError(t *testing.T) {
	timeoutErr := classifyError(fmt.Errorf("navigation failed: Timeout 30000ms exceeded"))
	assert.True(t, errors.Is(timeoutErr, ErrNavigationTimeout))

	otherErr := classifyError(fmt.Errorf("net::ERR_CONNECTION_REFUSED"))
	assert.False(t, errors.Is(otherErr, ErrNavigationTimeout))

	assert.NoError(t, classifyError(nil))
}

func TestSession_CloseIsIdempotentWhenAlreadyClosed(t *testing.T) {
	s := &Session{closed: true}

	assert.NoError(t, s.Close())
	assert.Error(t, s.Navigate("https://x.test"))
	assert.Error(t, s.Click("#a"))
	_, err := s.Screenshot()
	assert.Error(t, err)
	_, err = s.RunScript("1 + 1", nil)
	assert.Error(t, err)
}
