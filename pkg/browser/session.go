package browser

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/tourguide/pkg/extract"
	"github.com/entrhq/tourguide/pkg/types"
)

// clickSettleMs gives animations and client-side navigation triggered
// by a click time to settle before the next action.
const clickSettleMs = 1000.0

// highlightScript outlines the first element matching the selector and
// scrolls it into view. The outline clears itself after two seconds.
const highlightScript = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return false;
	el.scrollIntoView({ behavior: 'smooth', block: 'center' });
	const prev = el.style.outline;
	el.style.outline = '3px solid #f59e0b';
	setTimeout(() => { el.style.outline = prev; }, 2000);
	return true;
}`

// Session is the playwright-backed implementation of Handle: one real
// browser, context, and page bound to a single tour session. All
// operations are serialized on an internal mutex so concurrent callers
// cannot interleave actions on the same page.
type Session struct {
	mu         sync.Mutex
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	currentURL string
	closed     bool
}

// Navigate loads url and blocks until network-idle.
func (s *Session) Navigate(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return err
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return classifyError(fmt.Errorf("navigation to %s failed: %w", url, err))
	}

	s.currentURL = s.page.URL()
	return nil
}

// Click clicks the first element matching selector, then waits briefly
// for any resulting animation or navigation to settle.
func (s *Session) Click(selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return err
	}

	element, err := s.page.QuerySelector(selector)
	if err != nil {
		return fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return fmt.Errorf("%w: no element matches selector %q", ErrElementNotFound, selector)
	}

	if err := element.Click(); err != nil {
		return classifyError(fmt.Errorf("click on %q failed: %w", selector, err))
	}

	s.page.WaitForTimeout(clickSettleMs)
	s.currentURL = s.page.URL()
	return nil
}

// Scroll scrolls the page vertically by amount pixels.
func (s *Session) Scroll(direction string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return err
	}

	if amount <= 0 {
		amount = types.DefaultScrollAmount
	}
	if strings.EqualFold(direction, "up") {
		amount = -amount
	}

	if _, err := s.page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", amount)); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Type fills the element matching selector with text.
func (s *Session) Type(selector, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return err
	}

	element, err := s.page.QuerySelector(selector)
	if err != nil {
		return fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return fmt.Errorf("%w: no element matches selector %q", ErrElementNotFound, selector)
	}

	if err := element.Fill(text); err != nil {
		return classifyError(fmt.Errorf("type into %q failed: %w", selector, err))
	}
	return nil
}

// Highlight outlines the element matching selector. An empty selector
// is a no-op so that narration-only highlight actions have no browser
// side effect.
func (s *Session) Highlight(selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return err
	}
	if selector == "" {
		return nil
	}

	found, err := s.page.Evaluate(highlightScript, selector)
	if err != nil {
		return fmt.Errorf("highlight failed: %w", err)
	}
	if matched, ok := found.(bool); ok && !matched {
		return fmt.Errorf("%w: no element matches selector %q", ErrElementNotFound, selector)
	}
	return nil
}

// Screenshot captures the current viewport as a PNG data URL.
func (s *Session) Screenshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return "", err
	}

	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ExtractContent serializes the current page and parses it into a
// structured snapshot.
func (s *Session) ExtractContent() (types.PageContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return types.PageContent{}, err
	}

	title, err := s.page.Title()
	if err != nil {
		return types.PageContent{}, fmt.Errorf("failed to read page title: %w", err)
	}

	html, err := s.page.Content()
	if err != nil {
		return types.PageContent{}, fmt.Errorf("failed to read page content: %w", err)
	}

	return extract.PageContent(s.page.URL(), title, html)
}

// CurrentURL returns the URL recorded after the last navigation or
// click.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// RunScript evaluates a JavaScript expression in the page context and
// returns its result. A returned promise is awaited.
func (s *Session) RunScript(script string, arg interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	if arg == nil {
		return s.page.Evaluate(script)
	}
	return s.page.Evaluate(script, arg)
}

// Close releases the page, context, and browser. Errors during
// teardown are ignored so cleanup always completes; calling Close on an
// already-closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.page.Close()
	_ = s.context.Close()
	_ = s.browser.Close()
	return nil
}

func (s *Session) ensureOpen() error {
	if s.closed {
		return fmt.Errorf("browser session is closed")
	}
	return nil
}

// classifyError maps playwright timeout failures onto the engine's
// error taxonomy so callers can match with errors.Is.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "Timeout") || strings.Contains(err.Error(), "timeout") {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return err
}
