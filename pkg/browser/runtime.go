package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Default values for launched sessions.
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Options configures the browser sessions a Runtime launches.
type Options struct {
	// Headless controls whether browsers run without a visible window.
	Headless bool

	// ViewportWidth and ViewportHeight set the initial viewport size.
	ViewportWidth  int
	ViewportHeight int

	// Timeout is the default timeout for page operations, in
	// milliseconds.
	Timeout float64
}

// Runtime owns the playwright driver process and launches browser
// sessions from it. Initialize must be called before Launch; Shutdown
// stops the driver.
type Runtime struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	opts        Options
	initialized bool
}

// NewRuntime creates a runtime with the given session options. Zero
// option fields are replaced with defaults.
func NewRuntime(opts Options) *Runtime {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Runtime{opts: opts}
}

// Initialize installs browsers if needed and starts the playwright
// driver. Safe to call more than once.
func (r *Runtime) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}

	// Discard driver output so it does not interleave with our logs
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	r.playwright = pw
	r.initialized = true
	return nil
}

// Launch starts a new Chromium browser with its own context and page
// and returns the session wrapping them.
func (r *Runtime) Launch() (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil, fmt.Errorf("browser runtime not initialized")
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(r.opts.Headless),
	}
	b, err := r.playwright.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  r.opts.ViewportWidth,
			Height: r.opts.ViewportHeight,
		},
	}
	context, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(r.opts.Timeout)

	return &Session{
		browser:    b,
		context:    context,
		page:       page,
		currentURL: "about:blank",
	}, nil
}

// Shutdown stops the playwright driver. Sessions launched from this
// runtime must be closed first.
func (r *Runtime) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized || r.playwright == nil {
		return nil
	}

	if err := r.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	r.initialized = false
	return nil
}
