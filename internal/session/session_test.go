package session_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tokumei/internal/api"
	"github.com/julianstephens/tokumei/internal/api/apitest"
	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/identity"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/session"
	"github.com/julianstephens/tokumei/internal/storage/sqlite"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	srv   *apitest.Server
	db    *sqlite.Store
	clock *clock
	api   *api.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := sqlite.NewStore(filepath.Join(t.TempDir(), "tokumei.db"))
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })

	c := &clock{now: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)}
	srv := apitest.New(t)
	srv.SetClock(c.Now)

	client, err := api.New(srv.URL)
	require.NoError(t, err)

	return &harness{srv: srv, db: db, clock: c, api: client}
}

// open builds a fresh session over the shared store, like a new process.
func (h *harness) open(t *testing.T) *session.Session {
	t.Helper()
	tracker := daily.NewTracker(h.db, time.UTC, daily.WithClock(h.clock.Now))
	boot := identity.NewBootstrapper(identity.NewKVStore(h.db), h.api)
	return session.New(h.api, boot, tracker)
}

func (h *harness) start(t *testing.T) *session.Session {
	t.Helper()
	s := h.open(t)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func TestIdentityPersistsAcrossSessions(t *testing.T) {
	h := newHarness(t)

	first := h.start(t)
	userID, ok := first.UserID()
	require.True(t, ok)

	second := h.start(t)
	again, ok := second.UserID()
	require.True(t, ok)

	assert.Equal(t, userID, again)
	assert.Equal(t, 1, h.srv.Calls(apitest.RouteInitUser))
}

func TestBootstrapFailureDegrades(t *testing.T) {
	h := newHarness(t)
	h.srv.FailWith(apitest.RouteInitUser, http.StatusServiceUnavailable, "")

	s := h.open(t)
	err := s.Start(context.Background())
	assert.Error(t, err)

	view := s.Snapshot()
	assert.True(t, view.Ready)
	assert.True(t, view.Degraded())
	assert.Equal(t, session.Failure, view.Message.Kind)

	before := h.srv.TotalCalls()
	assert.ErrorIs(t, s.Submit(context.Background(), "hello"), session.ErrNoIdentity)
	_, err = s.Acquire(context.Background())
	assert.ErrorIs(t, err, session.ErrNoIdentity)
	assert.ErrorIs(t, s.Save(context.Background(), "diary-1"), session.ErrNoIdentity)
	assert.Equal(t, before, h.srv.TotalCalls(), "gated actions must not reach the service")
	assert.Equal(t, 1, h.srv.Calls(apitest.RouteInitUser), "no retry loop")
}

func TestActionsBeforeBootstrap(t *testing.T) {
	h := newHarness(t)
	s := h.open(t)

	_, err := s.BeginSubmit("hello")
	assert.ErrorIs(t, err, session.ErrNotReady)
}

func TestSubmitRejectsBlankContent(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	for _, content := range []string{"", "   ", "\n\t "} {
		err := s.Submit(context.Background(), content)
		assert.ErrorIs(t, err, session.ErrEmptyContent)
	}
	assert.Equal(t, 0, h.srv.Calls(apitest.RouteCreateDiary))
	assert.Equal(t, "Please write something first.", s.Snapshot().Message.Text)
}

func TestSubmitSuccess(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	s.SetDraft("  a quiet morning  ")

	require.NoError(t, s.Submit(context.Background(), "  a quiet morning  "))

	assert.JSONEq(t,
		`{"user_id":"user-1","content":"a quiet morning"}`,
		h.srv.LastPayload(apitest.RouteCreateDiary),
		"content is trimmed before sending",
	)

	view := s.Snapshot()
	assert.True(t, view.Daily.HasPostedToday)
	assert.Empty(t, view.Draft)
	assert.Equal(t, session.Message{Text: "Diary posted!", Kind: session.Success}, view.Message)
	assert.Equal(t, session.Succeeded, view.Submit.Status())
	require.Len(t, view.Mine, 1, "authored list is re-fetched")
	assert.Equal(t, "a quiet morning", view.Mine[0].Content)

	// A second post the same day is refused locally.
	err := s.Submit(context.Background(), "again")
	assert.ErrorIs(t, err, session.ErrAlreadyPosted)
	assert.Equal(t, 1, h.srv.Calls(apitest.RouteCreateDiary))

	// The marker survives a restart.
	assert.True(t, h.start(t).Snapshot().Daily.HasPostedToday)
}

func TestSubmitFailureChangesNothing(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.srv.FailWith(apitest.RouteCreateDiary, http.StatusInternalServerError, "")

	err := s.Submit(context.Background(), "hello")
	require.Error(t, err)

	view := s.Snapshot()
	assert.False(t, view.Daily.HasPostedToday)
	assert.Equal(t, "Failed to post diary.", view.Message.Text)
	assert.Equal(t, session.Failed, view.Submit.Status())
	assert.Error(t, view.Submit.Err())

	// Manually retryable with no cooldown.
	h.srv.Recover(apitest.RouteCreateDiary)
	require.NoError(t, s.Submit(context.Background(), "hello"))
	assert.True(t, s.Snapshot().Daily.HasPostedToday)
}

func TestSubmitReentrancyRejected(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	op, err := s.BeginSubmit("first")
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Submit.InFlight())

	_, err = s.BeginSubmit("second")
	assert.ErrorIs(t, err, session.ErrInFlight)

	// Other flows stay independent.
	_, err = s.BeginSave("diary-x")
	require.NoError(t, err)

	require.NoError(t, s.CompleteSubmit(context.Background(), op))
	assert.ErrorIs(t, s.CompleteSubmit(context.Background(), op), session.ErrNotPending)
}

func TestAcquireRequiresPost(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	_, err := s.Acquire(context.Background())
	assert.ErrorIs(t, err, session.ErrMustPostFirst)
	assert.Equal(t, 0, h.srv.Calls(apitest.RouteToday))

	require.NoError(t, s.Submit(context.Background(), "my day"))

	_, err = s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.srv.Calls(apitest.RouteToday))
}

func TestAcquireAccumulatesAndCaps(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		h.srv.Seed("someone-else", "entry")
	}
	s := h.start(t)
	require.NoError(t, s.Submit(context.Background(), "my day"))

	lengths := []int{}
	for i := 0; i < daily.MaxReceives; i++ {
		_, err := s.Acquire(context.Background())
		require.NoError(t, err)
		lengths = append(lengths, len(s.Snapshot().Received))
	}
	assert.Equal(t, []int{1, 2, 3, 3, 3}, lengths, "received list only grows")

	view := s.Snapshot()
	assert.Equal(t, 5, view.Daily.ReceivedCount)
	assert.False(t, view.CanAcquire())

	_, err := s.Acquire(context.Background())
	assert.ErrorIs(t, err, session.ErrReceiveLimit)
	assert.Equal(t, 5, h.srv.Calls(apitest.RouteToday), "sixth call never reaches the service")
}

func TestAcquireEmptyThirdCall(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	require.NoError(t, s.Submit(context.Background(), "my day"))

	h.srv.QueueToday(models.Diary{ID: "a", Content: "one"})
	h.srv.QueueToday(models.Diary{ID: "b", Content: "two"}, models.Diary{ID: "c", Content: "three"})
	h.srv.QueueToday()

	for i := 0; i < 2; i++ {
		_, err := s.Acquire(context.Background())
		require.NoError(t, err)
	}
	before := len(s.Snapshot().Received)

	batch, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)

	view := s.Snapshot()
	assert.Equal(t, 3, view.Daily.ReceivedCount)
	assert.Equal(t, "No diaries available right now.", view.Message.Text)
	assert.Len(t, view.Received, before)
	assert.Equal(t, 3, before)
}

func TestAcquireFailureChangesNothing(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	require.NoError(t, s.Submit(context.Background(), "my day"))
	h.srv.FailWith(apitest.RouteToday, http.StatusBadGateway, "")

	_, err := s.Acquire(context.Background())
	require.Error(t, err)

	view := s.Snapshot()
	assert.Equal(t, 0, view.Daily.ReceivedCount)
	assert.Equal(t, "Failed to receive diaries.", view.Message.Text)
	assert.False(t, view.Acquire.InFlight())
}

func TestSaveOncePerDay(t *testing.T) {
	h := newHarness(t)
	d1 := h.srv.Seed("author", "first")
	d2 := h.srv.Seed("author", "second")
	s := h.start(t)

	require.NoError(t, s.Save(context.Background(), d1.ID))

	view := s.Snapshot()
	assert.True(t, view.Daily.HasSavedToday)
	assert.Equal(t, "Saved to your collection.", view.Message.Text)
	require.Len(t, view.Saved, 1, "saved list is re-fetched from the service")
	assert.NotNil(t, view.Saved[0].SavedAt)

	err := s.Save(context.Background(), d2.ID)
	assert.ErrorIs(t, err, session.ErrAlreadySaved)
	assert.Equal(t, 1, h.srv.Calls(apitest.RouteSave), "second save never reaches the service")
}

func TestSaveFailureShowsServerDetail(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.srv.FailWith(apitest.RouteSave, http.StatusBadRequest, "already saved today")

	err := s.Save(context.Background(), "diary-1")
	require.Error(t, err)

	view := s.Snapshot()
	assert.Equal(t, "already saved today", view.Message.Text)
	assert.False(t, view.Daily.HasSavedToday)
	assert.Equal(t, session.Failed, view.Save.Status())
	assert.Equal(t, "diary-1", view.Save.EntryID())
}

func TestSaveFailureWithoutDetail(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.srv.FailWith(apitest.RouteSave, http.StatusInternalServerError, "")

	require.Error(t, s.Save(context.Background(), "diary-1"))
	assert.Equal(t, "Failed to save diary.", s.Snapshot().Message.Text)
}

func TestSaveMutualExclusion(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	op, err := s.BeginSave("diary-1")
	require.NoError(t, err)

	view := s.Snapshot()
	assert.True(t, view.Saving("diary-1"))
	assert.False(t, view.Saving("diary-2"))
	assert.False(t, view.CanSave())

	_, err = s.BeginSave("diary-2")
	assert.ErrorIs(t, err, session.ErrSaveInFlight)

	h.srv.Seed("author", "x") // diary-1 now exists
	require.NoError(t, s.CompleteSave(context.Background(), op))
}

func TestDayBoundaryResetsFlags(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("author", "x")
	s := h.start(t)
	require.NoError(t, s.Submit(context.Background(), "day one"))
	_, err := s.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "diary-1"))

	h.clock.Advance(24 * time.Hour)

	state, err := s.Daily()
	require.NoError(t, err)
	assert.Equal(t, daily.State{Today: "2026-10-18"}, state)
	assert.Empty(t, s.Snapshot().Received, "yesterday's received entries are dropped")

	userID, _ := s.UserID()
	markers, err := daily.NewTracker(h.db, time.UTC, daily.WithClock(h.clock.Now)).Markers(userID)
	require.NoError(t, err)
	assert.Empty(t, markers)

	require.NoError(t, s.Submit(context.Background(), "day two"))
}

func TestRefreshFailuresAreIsolated(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	require.NoError(t, s.Submit(context.Background(), "mine"))

	h.srv.FailWith(apitest.RouteSaved, http.StatusInternalServerError, "")
	h.srv.FailWith(apitest.RouteNotifications, http.StatusInternalServerError, "")

	err := s.Refresh(context.Background())
	assert.Error(t, err)

	view := s.Snapshot()
	assert.Len(t, view.Mine, 1, "successful fetch still applied")
	assert.Empty(t, view.Saved)
	assert.Equal(t, "Diary posted!", view.Message.Text, "refresh failures are not surfaced")
}

func TestNotificationsAfterSomeoneSaves(t *testing.T) {
	h := newHarness(t)
	author := h.start(t)
	require.NoError(t, author.Submit(context.Background(), "please keep me"))
	authorID, _ := author.UserID()

	// A second identity on the same service saves the author's entry.
	readerClient, err := api.New(h.srv.URL)
	require.NoError(t, err)
	mine := author.Snapshot().Mine
	require.Len(t, mine, 1)
	require.NoError(t, readerClient.SaveDiary(context.Background(), "reader", mine[0].ID))

	require.NoError(t, author.Refresh(context.Background()))
	view := author.Snapshot()
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, 1, view.Notifications[0].Saves())
	assert.NotEmpty(t, authorID)
}

func TestInspect(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	require.NoError(t, s.Submit(context.Background(), "look at me"))

	id := s.Snapshot().Mine[0].ID
	d, ok := s.Inspect(id)
	require.True(t, ok)
	assert.Equal(t, "look at me", d.Content)
	assert.Equal(t, id, s.Snapshot().Selected.ID)

	s.ClearSelection()
	assert.Nil(t, s.Snapshot().Selected)

	_, ok = s.Inspect("missing")
	assert.False(t, ok)
}

func TestRequestStatusString(t *testing.T) {
	assert.Equal(t, "pending", session.Pending.String())
	assert.Equal(t, "Status(9)", session.Status(9).String())
	var r session.Request
	assert.Equal(t, session.Idle, r.Status())
	assert.False(t, errors.Is(r.Err(), session.ErrInFlight))
}
