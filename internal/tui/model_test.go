package tui

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tokumei/internal/api"
	"github.com/julianstephens/tokumei/internal/api/apitest"
	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/identity"
	"github.com/julianstephens/tokumei/internal/session"
	"github.com/julianstephens/tokumei/internal/storage/sqlite"
)

var testNow = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *apitest.Server) {
	t.Helper()

	db := sqlite.NewStore(filepath.Join(t.TempDir(), "tokumei.db"))
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })

	srv := apitest.New(t)
	srv.SetClock(func() time.Time { return testNow })

	client, err := api.New(srv.URL)
	require.NoError(t, err)

	tracker := daily.NewTracker(db, time.UTC, daily.WithClock(func() time.Time { return testNow }))
	boot := identity.NewBootstrapper(identity.NewKVStore(db), client)
	sess := session.New(client, boot, tracker)

	m := New(context.Background(), sess, time.UTC)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), srv
}

// run executes cmd and feeds every resulting message back into m, skipping
// spinner ticks so the loop ends.
func run(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, cmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, cmd)
		}
	}
	return m
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = run(next.(Model), cmd)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func started(t *testing.T, m Model) Model {
	t.Helper()
	m = run(m, m.startCmd())
	require.False(t, m.starting)
	return m
}

func TestStartup(t *testing.T) {
	m, srv := newTestModel(t)
	assert.Contains(t, m.View(), "Connecting...")

	m = started(t, m)
	assert.Equal(t, constants.StateWrite, m.state)
	assert.Equal(t, "user-1", m.view.UserID)
	assert.Equal(t, 1, srv.Calls(apitest.RouteInitUser))
	assert.Equal(t, 1, srv.Calls(apitest.RouteMine), "initial refresh")
	assert.Contains(t, m.View(), "Press w to write today's diary.")
}

func TestStartupWithoutIdentity(t *testing.T) {
	m, srv := newTestModel(t)
	srv.FailWith(apitest.RouteInitUser, http.StatusServiceUnavailable, "")

	m = started(t, m)
	assert.True(t, m.view.Degraded())
	assert.Contains(t, m.View(), "No identity")

	m = press(m, runes("w"))
	assert.Equal(t, constants.StateWrite, m.state, "writing stays closed")

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.False(t, m.refreshing)
	assert.Equal(t, 0, srv.Calls(apitest.RouteMine))
}

func TestTabsWrap(t *testing.T) {
	m, _ := newTestModel(t)
	m = started(t, m)

	var seen []constants.SessionState
	for range constants.MainStates {
		m = press(m, tea.KeyMsg{Type: tea.KeyTab})
		seen = append(seen, m.state)
	}
	assert.Equal(t, []constants.SessionState{
		constants.StateRead,
		constants.StateCollection,
		constants.StateNotifications,
		constants.StateMine,
		constants.StateWrite,
	}, seen)

	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, constants.StateMine, m.state)
}

func TestWriteFormOpensAndKeepsDraft(t *testing.T) {
	m, srv := newTestModel(t)
	m = started(t, m)

	next, _ := m.Update(runes("w"))
	m = next.(Model)
	require.Equal(t, constants.StateEditing, m.state)
	require.NotNil(t, m.form)

	*m.draft = "half a thought"
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Equal(t, constants.StateWrite, m.state)
	assert.Equal(t, "half a thought", m.view.Draft)
	assert.Equal(t, 0, srv.Calls(apitest.RouteCreateDiary))
	assert.Contains(t, m.View(), "Unsent draft: half a thought")

	next, _ = m.Update(runes("w"))
	m = next.(Model)
	assert.Equal(t, "half a thought", *m.draft, "draft prefills the form")
}

func TestSubmit(t *testing.T) {
	m, srv := newTestModel(t)
	m = started(t, m)

	next, cmd := m.submit("   ")
	m = run(next.(Model), cmd)
	assert.Equal(t, "Please write something first.", m.view.Message.Text)
	assert.Equal(t, 0, srv.Calls(apitest.RouteCreateDiary))

	next, cmd = m.submit("a quiet morning")
	m = next.(Model)
	assert.True(t, m.view.Submit.InFlight())
	assert.Contains(t, m.View(), "Posting...")

	m = run(m, cmd)
	assert.True(t, m.view.Daily.HasPostedToday)
	assert.Equal(t, "Diary posted!", m.view.Message.Text)
	assert.Equal(t, 1, m.mine.Len())
	assert.Contains(t, m.View(), "You posted today.")
}

func TestReadRequiresPost(t *testing.T) {
	m, srv := newTestModel(t)
	m = started(t, m)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab}, runes("r"))
	assert.Equal(t, constants.StateRead, m.state)
	assert.Equal(t, "Post today's diary to start receiving.", m.view.Message.Text)
	assert.Equal(t, 0, srv.Calls(apitest.RouteToday))
}

func TestReceiveInspectAndSave(t *testing.T) {
	m, srv := newTestModel(t)
	seeded := srv.Seed("someone-else", "the river was loud today")
	m = started(t, m)

	next, cmd := m.submit("my day")
	m = run(next.(Model), cmd)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab}, runes("r"))
	require.Equal(t, 1, m.received.Len())
	assert.Equal(t, "Received 1 diary (1/5 today).", m.view.Message.Text)
	assert.Contains(t, m.View(), "4 receive(s) left today.")

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, constants.StateInspect, m.state)
	require.NotNil(t, m.view.Selected)
	assert.Contains(t, m.View(), "the river was loud today")

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, constants.StateRead, m.state)

	m = press(m, runes("s"))
	require.Equal(t, constants.StateConfirmSave, m.state)
	assert.Contains(t, m.View(), "Keep this diary?")

	m = press(m, runes("n"))
	assert.Equal(t, constants.StateRead, m.state)
	assert.Equal(t, 0, srv.Calls(apitest.RouteSave))

	m = press(m, runes("s"), runes("y"))
	assert.Equal(t, constants.StateRead, m.state)
	assert.Equal(t, 1, srv.Calls(apitest.RouteSave))
	assert.Equal(t, 1, srv.SaveCount(seeded.ID))
	assert.True(t, m.view.Daily.HasSavedToday)
	assert.Equal(t, 1, m.collection.Len())

	// The save key is disabled for the rest of the day.
	m = press(m, runes("s"))
	assert.Equal(t, constants.StateRead, m.state)
}

func TestSaveFailureShowsServiceDetail(t *testing.T) {
	m, srv := newTestModel(t)
	srv.Seed("someone-else", "entry")
	m = started(t, m)

	next, cmd := m.submit("my day")
	m = run(next.(Model), cmd)
	m = press(m, tea.KeyMsg{Type: tea.KeyTab}, runes("r"))

	srv.FailWith(apitest.RouteSave, http.StatusBadRequest, "already saved")
	m = press(m, runes("s"), runes("y"))
	assert.Equal(t, "already saved", m.view.Message.Text)
	assert.Equal(t, session.Failure, m.view.Message.Kind)
	assert.False(t, m.view.Daily.HasSavedToday)
}

func TestRefresh(t *testing.T) {
	m, srv := newTestModel(t)
	m = started(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	assert.True(t, m.refreshing)

	m = run(m, cmd)
	assert.False(t, m.refreshing)
	assert.Equal(t, 2, srv.Calls(apitest.RouteSaved))
	assert.Equal(t, 2, srv.Calls(apitest.RouteNotifications))
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m = started(t, m)

	next, cmd := m.Update(runes("q"))
	m = next.(Model)
	assert.True(t, m.quitting)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
