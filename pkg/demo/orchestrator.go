// Package demo is the orchestration core: it owns the registry of live
// demo sessions, drives each session's automated tour, and translates
// interactive user commands into browser actions on the session's
// handle. All state is process-lifetime, keyed by session id.
package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/tourguide/pkg/browser"
	"github.com/entrhq/tourguide/pkg/llm"
	"github.com/entrhq/tourguide/pkg/logging"
	"github.com/entrhq/tourguide/pkg/narrator"
	"github.com/entrhq/tourguide/pkg/speech"
	"github.com/entrhq/tourguide/pkg/tour"
	"github.com/entrhq/tourguide/pkg/types"
)

// Defaults for the session registry.
const (
	DefaultMaxSessions = 5
	DefaultIdleTimeout = 300 * time.Second
)

// apologyNarration is spoken when an interactive command's action fails
// against the page.
const apologyNarration = "Sorry, I had trouble processing that command. Please try again."

// Launcher starts browser sessions. browser.Runtime satisfies this.
type Launcher interface {
	Launch() (browser.Handle, error)
}

// Interpreter produces narration and command interpretations.
// narrator.Narrator satisfies this; neither method may fail.
type Interpreter interface {
	Narrate(ctx context.Context, page types.PageContent, visited []types.PageContent) string
	Interpret(ctx context.Context, command string, cmdCtx narrator.CommandContext) (types.BrowserAction, string)
}

// CreateSessionRequest describes a new demo session. SessionID is
// optional; when empty a uuid is assigned.
type CreateSessionRequest struct {
	SessionID string   `json:"sessionId,omitempty"`
	MainURL   string   `json:"mainUrl"`
	PageURLs  []string `json:"pageUrls"`
}

// InterpretResult is the outcome of an interactive command: the chosen
// action, the narration to play back, and whether the action executed
// against the browser.
type InterpretResult struct {
	Action    types.ActionPayload `json:"action"`
	Narration string              `json:"narration"`
	Executed  bool                `json:"executed"`

	// ExecutionError is set when the action was recognized but failed
	// against the page, e.g. a selector that matched nothing. The
	// session stays usable.
	ExecutionError string `json:"executionError,omitempty"`
}

// Orchestrator owns the session registry and exposes the engine's
// operation surface. Operations on different sessions proceed
// concurrently; operations on one session are serialized by the
// session's browser handle.
type Orchestrator struct {
	mu       sync.RWMutex
	sessions map[string]*session

	launcher    Launcher
	interp      Interpreter
	provider    llm.Provider
	logger      *logging.Logger
	maxSessions int
	idleTimeout time.Duration
}

// NewOrchestrator creates the orchestrator. provider may be nil (the
// interpreter falls back to templates and script generation to the
// deterministic script); logger may be nil.
func NewOrchestrator(launcher Launcher, interp Interpreter, provider llm.Provider, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		sessions:    make(map[string]*session),
		launcher:    launcher,
		interp:      interp,
		provider:    provider,
		logger:      logger,
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
	}
}

// SetMaxSessions sets the concurrent session limit.
func (o *Orchestrator) SetMaxSessions(max int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.maxSessions = max
}

// SetIdleTimeout sets how long a session may sit unused before
// CleanupIdleSessions releases it.
func (o *Orchestrator) SetIdleTimeout(timeout time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.idleTimeout = timeout
}

// CreateSession launches a browser for a new demo run and navigates it
// to the main URL. The page list must be non-empty. A duplicate id
// fails with ErrSessionExists, counting ended sessions too: ids are
// never reused within a process.
func (o *Orchestrator) CreateSession(ctx context.Context, req CreateSessionRequest) (string, error) {
	if req.MainURL == "" {
		return "", fmt.Errorf("%w: mainUrl is required", ErrInvalidInput)
	}
	if len(req.PageURLs) == 0 {
		return "", fmt.Errorf("%w: pageUrls must not be empty", ErrInvalidInput)
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	o.mu.Lock()
	if _, exists := o.sessions[id]; exists {
		o.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	live := 0
	for _, s := range o.sessions {
		if !s.isEnded() {
			live++
		}
	}
	if live >= o.maxSessions {
		o.mu.Unlock()
		return "", fmt.Errorf("%w (%d)", ErrTooManySessions, o.maxSessions)
	}
	// Reserve the id before the launch so a concurrent create with the
	// same id cannot race a second browser into existence.
	placeholder := &session{id: id, createdAt: time.Now(), lastUsed: time.Now(), ended: true, tour: tour.New(nil, nil, nil)}
	o.sessions[id] = placeholder
	o.mu.Unlock()

	handle, err := o.launcher.Launch()
	if err != nil {
		o.mu.Lock()
		delete(o.sessions, id)
		o.mu.Unlock()
		return "", fmt.Errorf("failed to launch browser for session: %w", err)
	}

	sessionLogger := o.logger
	if sessionLogger != nil {
		sessionLogger = sessionLogger.WithSession(id)
	}

	if err := handle.Navigate(req.MainURL); err != nil {
		// The tour will navigate per page anyway
		if sessionLogger != nil {
			sessionLogger.Warnf("initial navigation to %s failed: %v", req.MainURL, err)
		}
	}

	now := time.Now()
	s := &session{
		id:        id,
		mainURL:   req.MainURL,
		pageURLs:  append([]string(nil), req.PageURLs...),
		handle:    handle,
		tour:      tour.New(handle, o.interp, sessionLogger),
		speaker:   speech.ForHandle(handle),
		createdAt: now,
		lastUsed:  now,
	}

	o.mu.Lock()
	o.sessions[id] = s
	o.mu.Unlock()

	if sessionLogger != nil {
		sessionLogger.Infof("session created for %s with %d tour pages", req.MainURL, len(req.PageURLs))
	}
	return id, nil
}

// StartTour begins the automated walkthrough. When pageURLs is empty
// the list given at session creation is used.
func (o *Orchestrator) StartTour(_ context.Context, sessionID string, pageURLs []string) error {
	s, err := o.lookup(sessionID)
	if err != nil {
		return err
	}
	s.touch()

	if s.isEnded() {
		return ErrSessionEnded
	}

	if len(pageURLs) == 0 {
		s.mu.Lock()
		pageURLs = append([]string(nil), s.pageURLs...)
		s.mu.Unlock()
	} else {
		s.mu.Lock()
		s.pageURLs = append([]string(nil), pageURLs...)
		s.mu.Unlock()
	}

	if err := s.tour.Start(pageURLs); err != nil {
		if errors.Is(err, tour.ErrNoPages) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return err
	}
	return nil
}

// AdvanceTour performs one tour step and returns its outcome. Narration
// playback pacing is the caller's job; the orchestrator only voices the
// step through the session's speaker, best-effort.
func (o *Orchestrator) AdvanceTour(ctx context.Context, sessionID string) (tour.StepResult, error) {
	s, err := o.lookup(sessionID)
	if err != nil {
		return tour.StepResult{}, err
	}
	s.touch()

	if s.isEnded() {
		return tour.StepResult{}, ErrSessionEnded
	}

	result, err := s.tour.Advance(ctx)
	if err != nil {
		return tour.StepResult{}, err
	}

	if result.Narration != "" {
		if err := s.speaker.Speak(ctx, result.Narration); err != nil && o.logger != nil {
			o.logger.Debugf("narration playback unavailable for session %s: %v", sessionID, err)
		}
	}
	return result, nil
}

// GetTourProgress reports the tour's index, totals, and recorded steps.
func (o *Orchestrator) GetTourProgress(sessionID string) (tour.Progress, error) {
	s, err := o.lookup(sessionID)
	if err != nil {
		return tour.Progress{}, err
	}
	s.touch()
	return s.tour.Progress(), nil
}

// EndTour stops the automated walkthrough. The browser stays open and
// the session remains interactive.
func (o *Orchestrator) EndTour(sessionID string) error {
	s, err := o.lookup(sessionID)
	if err != nil {
		return err
	}
	s.touch()
	s.tour.End()
	return nil
}

// DispatchBrowserAction executes one structured action against the
// session's browser. Dispatch to an ended session is refused.
func (o *Orchestrator) DispatchBrowserAction(_ context.Context, sessionID string, action types.BrowserAction) error {
	s, err := o.lookup(sessionID)
	if err != nil {
		return err
	}
	s.touch()

	handle, err := s.liveHandle()
	if err != nil {
		return err
	}
	return execute(handle, action)
}

// execute maps each action variant onto the handle primitive it drives.
// An unrecognized variant is narration-only: no browser side effect.
func execute(handle browser.Handle, action types.BrowserAction) error {
	switch a := action.(type) {
	case types.ClickAction:
		return handle.Click(a.Selector)
	case types.ScrollAction:
		return handle.Scroll(a.Direction, a.Amount)
	case types.NavigateAction:
		return handle.Navigate(a.URL)
	case types.TypeAction:
		return handle.Type(a.Selector, a.Text)
	case types.HighlightAction:
		return handle.Highlight(a.Selector)
	default:
		return nil
	}
}

// CaptureScreenshot returns the current viewport as an encoded image.
func (o *Orchestrator) CaptureScreenshot(sessionID string) (string, error) {
	s, err := o.lookup(sessionID)
	if err != nil {
		return "", err
	}
	s.touch()

	handle, err := s.liveHandle()
	if err != nil {
		return "", err
	}
	return handle.Screenshot()
}

// ExtractPageContent snapshots the session's current page.
func (o *Orchestrator) ExtractPageContent(sessionID string) (types.PageContent, error) {
	s, err := o.lookup(sessionID)
	if err != nil {
		return types.PageContent{}, err
	}
	s.touch()

	handle, err := s.liveHandle()
	if err != nil {
		return types.PageContent{}, err
	}
	return handle.ExtractContent()
}

// InterpretCommand translates a free-text command into an action,
// executes it against the session's browser, and returns the action,
// the narration to play back, and the execution outcome. A recognized
// action that fails against the page is recoverable: the session stays
// usable, the failure is reported in the result, and an apology is
// spoken in place of the confirmation.
func (o *Orchestrator) InterpretCommand(ctx context.Context, sessionID, command string) (InterpretResult, error) {
	if command == "" {
		return InterpretResult{}, fmt.Errorf("%w: command text is required", ErrInvalidInput)
	}

	s, err := o.lookup(sessionID)
	if err != nil {
		return InterpretResult{}, err
	}
	s.touch()

	handle, err := s.liveHandle()
	if err != nil {
		return InterpretResult{}, err
	}

	action, narration := o.interp.Interpret(ctx, command, o.commandContext(s, handle))
	result := InterpretResult{
		Action:    types.PayloadFor(action),
		Narration: narration,
	}

	if execErr := execute(handle, action); execErr != nil {
		result.ExecutionError = execErr.Error()
		result.Narration = apologyNarration
		if err := s.speaker.Speak(ctx, apologyNarration); err != nil && o.logger != nil {
			o.logger.Debugf("apology playback unavailable for session %s: %v", sessionID, err)
		}
		return result, nil
	}

	result.Executed = true
	return result, nil
}

// commandContext assembles the accumulated tour state the model uses to
// resolve references like "go back to the pricing page".
func (o *Orchestrator) commandContext(s *session, handle browser.Handle) narrator.CommandContext {
	visited := s.tour.Visited()
	titles := make([]string, 0, len(visited))
	for _, page := range visited {
		titles = append(titles, page.Title)
	}

	s.mu.Lock()
	urls := make([]string, len(s.pageURLs))
	copy(urls, s.pageURLs)
	s.mu.Unlock()

	cmdCtx := narrator.CommandContext{
		VisitedTitles: titles,
		PageURLs:      urls,
		TourComplete:  s.tour.State() == tour.StateCompleted,
	}

	// Best-effort snapshot of the page the command applies to
	if content, err := handle.ExtractContent(); err == nil {
		cmdCtx.CurrentPage = &content
	}
	return cmdCtx
}

// Speak voices text through the session's page.
func (o *Orchestrator) Speak(ctx context.Context, sessionID, text string) error {
	s, err := o.lookup(sessionID)
	if err != nil {
		return err
	}
	s.touch()

	if s.isEnded() {
		return ErrSessionEnded
	}
	return s.speaker.Speak(ctx, text)
}

// GenerateScript produces a scripted walkthrough for a site without
// needing a session.
func (o *Orchestrator) GenerateScript(ctx context.Context, siteURL string) ([]tour.ScriptStep, error) {
	if siteURL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	return tour.GenerateScript(ctx, o.provider, siteURL), nil
}

// CloseSession releases the session's browser. The record is kept so a
// second close on the same id is a no-op; an unknown id fails with
// ErrSessionNotFound.
func (o *Orchestrator) CloseSession(sessionID string) error {
	s, err := o.lookup(sessionID)
	if err != nil {
		return err
	}
	s.end()
	if o.logger != nil {
		o.logger.Infof("session %s closed", sessionID)
	}
	return nil
}

// ListSessions summarizes every known session, ended ones included.
func (o *Orchestrator) ListSessions() []SessionInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(o.sessions))
	for _, s := range o.sessions {
		infos = append(infos, s.info())
	}
	return infos
}

// CloseAll releases every live session. Used at shutdown.
func (o *Orchestrator) CloseAll() {
	o.mu.RLock()
	sessions := make([]*session, 0, len(o.sessions))
	for _, s := range o.sessions {
		sessions = append(sessions, s)
	}
	o.mu.RUnlock()

	for _, s := range sessions {
		s.end()
	}
}

// CleanupIdleSessions releases sessions idle beyond the timeout and
// drops ended records that have also gone idle, so abandoned demos do
// not hold browsers or registry entries forever.
func (o *Orchestrator) CleanupIdleSessions() {
	cutoff := time.Now().Add(-o.idleTimeout)

	o.mu.Lock()
	var stale []*session
	for id, s := range o.sessions {
		if s.idleSince().After(cutoff) {
			continue
		}
		if s.isEnded() {
			delete(o.sessions, id)
			continue
		}
		stale = append(stale, s)
	}
	o.mu.Unlock()

	for _, s := range stale {
		s.end()
		if o.logger != nil {
			o.logger.Infof("idle session %s released", s.id)
		}
	}
}

func (o *Orchestrator) lookup(sessionID string) (*session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s, exists := o.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}
