package tour

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tourguide/pkg/types"
)

// fakeHandle is an in-memory browser.Handle for tour tests.
type fakeHandle struct {
	currentURL  string
	navigations []string
	failURLs    map[string]error
	failExtract error
	titles      map[string]string
	closed      bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		currentURL: "about:blank",
		failURLs:   map[string]error{},
		titles:     map[string]string{},
	}
}

func (f *fakeHandle) Navigate(url string) error {
	f.navigations = append(f.navigations, url)
	if err, bad := f.failURLs[url]; bad {
		return err
	}
	f.currentURL = url
	return nil
}

func (f *fakeHandle) Click(selector string) error        { return nil }
func (f *fakeHandle) Scroll(dir string, amount int) error { return nil }
func (f *fakeHandle) Type(selector, text string) error   { return nil }
func (f *fakeHandle) Highlight(selector string) error    { return nil }
func (f *fakeHandle) Screenshot() (string, error)        { return "data:image/png;base64,Zg==", nil }

func (f *fakeHandle) ExtractContent() (types.PageContent, error) {
	if f.failExtract != nil {
		return types.PageContent{}, f.failExtract
	}
	title := f.titles[f.currentURL]
	if title == "" {
		title = "Untitled"
	}
	return types.PageContent{URL: f.currentURL, Title: title}, nil
}

func (f *fakeHandle) CurrentURL() string { return f.currentURL }
func (f *fakeHandle) Close() error       { f.closed = true; return nil }

// recordingNarrator captures the visited slice passed to each call.
type recordingNarrator struct {
	visitedCounts []int
}

func (r *recordingNarrator) Narrate(_ context.Context, page types.PageContent, visited []types.PageContent) string {
	r.visitedCounts = append(r.visitedCounts, len(visited))
	return "Narrating " + page.Title
}

func TestStart_RejectsEmptyPageList(t *testing.T) {
	tr := New(newFakeHandle(), &recordingNarrator{}, nil)

	assert.ErrorIs(t, tr.Start(nil), ErrNoPages)
	assert.Equal(t, StateNotStarted, tr.State())
}

func TestStart_RejectsDoubleStart(t *testing.T) {
	tr := New(newFakeHandle(), &recordingNarrator{}, nil)

	require.NoError(t, tr.Start([]string{"https://x.test"}))
	assert.Error(t, tr.Start([]string{"https://x.test"}))
}

func TestAdvance_BeforeStart(t *testing.T) {
	tr := New(newFakeHandle(), &recordingNarrator{}, nil)

	_, err := tr.Advance(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestAdvance_FullTour(t *testing.T) {
	handle := newFakeHandle()
	handle.titles["https://x.test/home"] = "Home"
	handle.titles["https://x.test/pricing"] = "Pricing"
	handle.titles["https://x.test/docs"] = "Docs"
	narr := &recordingNarrator{}
	tr := New(handle, narr, nil)

	pages := []string{"https://x.test/home", "https://x.test/pricing", "https://x.test/docs"}
	require.NoError(t, tr.Start(pages))
	assert.Equal(t, StateRunning, tr.State())

	ctx := context.Background()

	first, err := tr.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, first.HasNextPage)
	assert.Equal(t, "https://x.test/pricing", first.NextPageURL)
	assert.False(t, first.TourComplete)
	assert.Equal(t, "Narrating Home", first.Narration)
	require.NotNil(t, first.Step)
	assert.Equal(t, "https://x.test/home", first.Step.PageURL)

	second, err := tr.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, second.HasNextPage)

	third, err := tr.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, third.HasNextPage)
	assert.True(t, third.TourComplete)

	assert.Equal(t, StateCompleted, tr.State())

	progress := tr.Progress()
	assert.Equal(t, 3, progress.CurrentIndex)
	assert.Equal(t, 3, progress.TotalPages)
	require.Len(t, progress.Steps, 3)
	assert.Equal(t, pages[0], progress.Steps[0].PageURL)
	assert.Equal(t, pages[2], progress.Steps[2].PageURL)

	// Each narration saw exactly the previously visited pages
	assert.Equal(t, []int{0, 1, 2}, narr.visitedCounts)
}

func TestAdvance_SkipsNavigationWhenAlreadyOnPage(t *testing.T) {
	handle := newFakeHandle()
	handle.currentURL = "https://x.test/home"
	tr := New(handle, &recordingNarrator{}, nil)

	require.NoError(t, tr.Start([]string{"https://x.test/home", "https://x.test/about"}))

	_, err := tr.Advance(context.Background())
	require.NoError(t, err)
	assert.Empty(t, handle.navigations, "first page was already loaded")

	_, err = tr.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x.test/about"}, handle.navigations)
}

func TestAdvance_NavigationFailureSkipsStepButAdvances(t *testing.T) {
	handle := newFakeHandle()
	handle.failURLs["https://x.test/broken"] = errors.New("net::ERR_NAME_NOT_RESOLVED")
	tr := New(handle, &recordingNarrator{}, nil)

	require.NoError(t, tr.Start([]string{"https://x.test/broken", "https://x.test/ok"}))

	first, err := tr.Advance(context.Background())
	require.NoError(t, err, "a failed page must not abort the tour")
	assert.Nil(t, first.Step)
	assert.Empty(t, first.Narration)
	assert.True(t, first.HasNextPage)

	second, err := tr.Advance(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second.Step)
	assert.True(t, second.TourComplete)

	progress := tr.Progress()
	assert.Equal(t, 2, progress.CurrentIndex)
	assert.Len(t, progress.Steps, 1)
	assert.Equal(t, StateCompleted, tr.State())
}

func TestAdvance_ExtractionFailureSkipsStep(t *testing.T) {
	handle := newFakeHandle()
	handle.failExtract = errors.New("page crashed")
	tr := New(handle, &recordingNarrator{}, nil)

	require.NoError(t, tr.Start([]string{"https://x.test"}))

	result, err := tr.Advance(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Step)
	assert.True(t, result.TourComplete)
	assert.Equal(t, StateCompleted, tr.State())
}

func TestAdvance_AfterCompletion(t *testing.T) {
	tr := New(newFakeHandle(), &recordingNarrator{}, nil)
	require.NoError(t, tr.Start([]string{"https://x.test"}))

	_, err := tr.Advance(context.Background())
	require.NoError(t, err)

	again, err := tr.Advance(context.Background())
	require.NoError(t, err)
	assert.True(t, again.TourComplete)
	assert.Nil(t, again.Step)
}

func TestEnd_IsAbsorbing(t *testing.T) {
	tr := New(newFakeHandle(), &recordingNarrator{}, nil)
	require.NoError(t, tr.Start([]string{"https://x.test"}))

	tr.End()
	assert.Equal(t, StateEnded, tr.State())

	_, err := tr.Advance(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)

	tr.End()
	assert.Equal(t, StateEnded, tr.State())
}

func TestProgress_CopiesSteps(t *testing.T) {
	handle := newFakeHandle()
	tr := New(handle, &recordingNarrator{}, nil)
	require.NoError(t, tr.Start([]string{"https://x.test"}))

	_, err := tr.Advance(context.Background())
	require.NoError(t, err)

	progress := tr.Progress()
	require.Len(t, progress.Steps, 1)
	progress.Steps[0].PageURL = "mutated"

	assert.Equal(t, "https://x.test", tr.Progress().Steps[0].PageURL)
}

func TestVisited_ReturnsSnapshots(t *testing.T) {
	handle := newFakeHandle()
	handle.titles["https://x.test"] = "Home"
	tr := New(handle, &recordingNarrator{}, nil)
	require.NoError(t, tr.Start([]string{"https://x.test"}))

	_, err := tr.Advance(context.Background())
	require.NoError(t, err)

	visited := tr.Visited()
	require.Len(t, visited, 1)
	assert.Equal(t, "Home", visited[0].Title)
}

// Ensures the tour plays nicely when every page fails: the state
// machine still reaches Completed after N advances.
func TestAdvance_AllPagesFailing(t *testing.T) {
	handle := newFakeHandle()
	for i := 0; i < 3; i++ {
		handle.failURLs[fmt.Sprintf("https://x.test/%d", i)] = errors.New("boom")
	}
	tr := New(handle, &recordingNarrator{}, nil)
	require.NoError(t, tr.Start([]string{"https://x.test/0", "https://x.test/1", "https://x.test/2"}))

	for i := 0; i < 3; i++ {
		_, err := tr.Advance(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, StateCompleted, tr.State())
	assert.Empty(t, tr.Progress().Steps)
}
