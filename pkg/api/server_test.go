package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tourguide/pkg/browser"
	"github.com/entrhq/tourguide/pkg/demo"
	"github.com/entrhq/tourguide/pkg/tour"
	"github.com/entrhq/tourguide/pkg/types"
)

// stubOrchestrator records calls and returns canned results.
type stubOrchestrator struct {
	err error

	createdReq     demo.CreateSessionRequest
	startedPages   []string
	dispatched     types.BrowserAction
	command        string
	spokenText     string
	closedSessions []string
}

func (s *stubOrchestrator) CreateSession(_ context.Context, req demo.CreateSessionRequest) (string, error) {
	s.createdReq = req
	if s.err != nil {
		return "", s.err
	}
	return "session-1", nil
}

func (s *stubOrchestrator) StartTour(_ context.Context, sessionID string, pageURLs []string) error {
	s.startedPages = pageURLs
	return s.err
}

func (s *stubOrchestrator) AdvanceTour(context.Context, string) (tour.StepResult, error) {
	if s.err != nil {
		return tour.StepResult{}, s.err
	}
	return tour.StepResult{HasNextPage: true, NextPageURL: "https://x.test/next", Narration: "Next up."}, nil
}

func (s *stubOrchestrator) GetTourProgress(string) (tour.Progress, error) {
	if s.err != nil {
		return tour.Progress{}, s.err
	}
	return tour.Progress{CurrentIndex: 1, TotalPages: 3, State: tour.StateRunning}, nil
}

func (s *stubOrchestrator) EndTour(string) error { return s.err }

func (s *stubOrchestrator) DispatchBrowserAction(_ context.Context, _ string, action types.BrowserAction) error {
	s.dispatched = action
	return s.err
}

func (s *stubOrchestrator) CaptureScreenshot(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "data:image/png;base64,Zg==", nil
}

func (s *stubOrchestrator) ExtractPageContent(string) (types.PageContent, error) {
	if s.err != nil {
		return types.PageContent{}, s.err
	}
	return types.PageContent{Title: "Acme Home"}, nil
}

func (s *stubOrchestrator) InterpretCommand(_ context.Context, _ string, command string) (demo.InterpretResult, error) {
	s.command = command
	if s.err != nil {
		return demo.InterpretResult{}, s.err
	}
	return demo.InterpretResult{
		Action:    types.ActionPayload{Type: "highlight", Description: "Execute command: " + command},
		Narration: "On it.",
		Executed:  true,
	}, nil
}

func (s *stubOrchestrator) Speak(_ context.Context, _ string, text string) error {
	s.spokenText = text
	return s.err
}

func (s *stubOrchestrator) GenerateScript(_ context.Context, siteURL string) ([]tour.ScriptStep, error) {
	if siteURL == "" {
		return nil, fmt.Errorf("%w: url is required", demo.ErrInvalidInput)
	}
	return []tour.ScriptStep{{Narration: "Welcome.", DurationSeconds: 3}}, nil
}

func (s *stubOrchestrator) CloseSession(sessionID string) error {
	s.closedSessions = append(s.closedSessions, sessionID)
	return s.err
}

func (s *stubOrchestrator) ListSessions() []demo.SessionInfo {
	return []demo.SessionInfo{{ID: "session-1", Status: demo.StatusRunning}}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession(t *testing.T) {
	stub := &stubOrchestrator{}
	server := NewServer(stub, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions",
		`{"mainUrl": "https://x.test", "pageUrls": ["https://x.test/about"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session-1", resp["sessionId"])
	assert.Equal(t, "https://x.test", stub.createdReq.MainURL)
}

func TestCreateSession_BadJSON(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", demo.ErrInvalidInput, http.StatusBadRequest},
		{"not found", demo.ErrSessionNotFound, http.StatusNotFound},
		{"already exists", demo.ErrSessionExists, http.StatusConflict},
		{"session ended", demo.ErrSessionEnded, http.StatusConflict},
		{"tour not running", tour.ErrNotRunning, http.StatusConflict},
		{"too many sessions", demo.ErrTooManySessions, http.StatusTooManyRequests},
		{"element not found", browser.ErrElementNotFound, http.StatusUnprocessableEntity},
		{"unexpected", fmt.Errorf("browser died"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(&stubOrchestrator{err: tt.err}, nil)

			rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/tour/advance", "")
			assert.Equal(t, tt.status, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestStartTour_WithAndWithoutBody(t *testing.T) {
	stub := &stubOrchestrator{}
	server := NewServer(stub, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/tour/start",
		`{"pageUrls": ["https://x.test/a", "https://x.test/b"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://x.test/a", "https://x.test/b"}, stub.startedPages)

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/session-1/tour/start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, stub.startedPages)
}

func TestAdvanceTour(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/tour/advance", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var result tour.StepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.HasNextPage)
	assert.Equal(t, "https://x.test/next", result.NextPageURL)
}

func TestTourProgress(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/sessions/session-1/tour", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var progress tour.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 1, progress.CurrentIndex)
	assert.Equal(t, 3, progress.TotalPages)
}

func TestDispatchAction(t *testing.T) {
	stub := &stubOrchestrator{}
	server := NewServer(stub, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/actions",
		`{"type": "click", "target": "#signup", "description": "Click signup"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	click, ok := stub.dispatched.(types.ClickAction)
	require.True(t, ok)
	assert.Equal(t, "#signup", click.Selector)
}

func TestDispatchAction_UnknownType(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/actions",
		`{"type": "explode"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommand(t *testing.T) {
	stub := &stubOrchestrator{}
	server := NewServer(stub, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/command",
		`{"command": "scroll down a bit"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scroll down a bit", stub.command)

	var result demo.InterpretResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Executed)
	assert.Equal(t, "highlight", result.Action.Type)
}

func TestScreenshotAndContent(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/sessions/session-1/screenshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")

	rec = doRequest(t, server, http.MethodGet, "/api/sessions/session-1/content", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Home")
}

func TestSpeak(t *testing.T) {
	stub := &stubOrchestrator{}
	server := NewServer(stub, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/session-1/speak",
		`{"text": "Welcome to the demo."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the demo.", stub.spokenText)
}

func TestCloseSession(t *testing.T) {
	stub := &stubOrchestrator{}
	server := NewServer(stub, nil)

	rec := doRequest(t, server, http.MethodDelete, "/api/sessions/session-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"session-1"}, stub.closedSessions)
}

func TestListSessions(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/sessions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "session-1")
}

func TestGenerateScript(t *testing.T) {
	server := NewServer(&stubOrchestrator{}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/script?url=https://x.test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Welcome."))

	rec = doRequest(t, server, http.MethodGet, "/api/script", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
