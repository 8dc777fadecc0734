package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/session"
	"github.com/julianstephens/tokumei/internal/tui/components/diarylist"
	"github.com/julianstephens/tokumei/internal/tui/components/inspect"
)

// Results of the remote halves of each flow. The session already holds the
// outcome; the messages only tell the model to re-render.
type (
	startedMsg   struct{ err error }
	submittedMsg struct{ err error }
	acquiredMsg  struct{ err error }
	savedMsg     struct{ err error }
	refreshedMsg struct{ err error }
)

var tabTitles = map[constants.SessionState]string{
	constants.StateWrite:         "Write",
	constants.StateRead:          "Read",
	constants.StateCollection:    "Collection",
	constants.StateNotifications: "Saved by others",
	constants.StateMine:          "Mine",
}

type Model struct {
	ctx  context.Context
	sess *session.Session
	loc  *time.Location

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model

	received      diarylist.Model
	collection    diarylist.Model
	notifications diarylist.Model
	mine          diarylist.Model
	inspector     inspect.Model

	form      *huh.Form
	draft     *string
	confirmID string

	view       session.View
	starting   bool
	refreshing bool
	quitting   bool
	width      int
	height     int
}

// New builds the interactive model over sess. Remote calls run with ctx.
func New(ctx context.Context, sess *session.Session, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(warningStyle))

	draft := ""
	return Model{
		ctx:           ctx,
		sess:          sess,
		loc:           loc,
		state:         constants.StateWrite,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		received:      diarylist.New("Received today", "Nothing received yet. Press r to receive.", diarylist.DetailCreated, loc, 0, 0),
		collection:    diarylist.New("Collection", "Your collection is empty.", diarylist.DetailSavedAt, loc, 0, 0),
		notifications: diarylist.New("Saved by others", "No notifications yet.", diarylist.DetailSaves, loc, 0, 0),
		mine:          diarylist.New("Mine", "You haven't written anything yet.", diarylist.DetailSaves, loc, 0, 0),
		inspector:     inspect.New(loc, 0, 0),
		draft:         &draft,
		starting:      true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCmd())
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateWrite:
		if m.view.CanSubmit() {
			keys = append(keys, m.keys.Write)
		}
	case constants.StateRead:
		keys = append(keys, m.keys.Receive, m.keys.Enter)
		if m.view.CanSave() {
			keys = append(keys, m.keys.Save)
		}
	case constants.StateCollection, constants.StateNotifications, constants.StateMine:
		keys = append(keys, m.keys.Enter)
	case constants.StateInspect:
		return []key.Binding{inspect.CloseKey(), m.keys.Up, m.keys.Down}
	case constants.StateConfirmSave:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return append(keys, m.keys.Refresh)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}

	var actions []key.Binding
	switch m.state {
	case constants.StateWrite:
		actions = []key.Binding{m.keys.Write}
	case constants.StateRead:
		actions = []key.Binding{m.keys.Receive, m.keys.Save}
	}
	return [][]key.Binding{global, navigation, actions}
}

// sync copies the session state into the model and its lists.
func (m *Model) sync() {
	if _, ok := m.sess.UserID(); ok {
		// Re-derives today's state so a day boundary shows without restart.
		_, _ = m.sess.Daily()
	}
	m.view = m.sess.Snapshot()

	savingID := ""
	if m.view.Save.InFlight() {
		savingID = m.view.Save.EntryID()
	}
	m.received.SetDiaries(m.view.Received)
	m.received.SetSaving(m.view.CanSave(), savingID)
	m.collection.SetDiaries(m.view.Saved)
	m.notifications.SetDiaries(m.view.Notifications)
	m.mine.SetDiaries(m.view.Mine)
}

func (m Model) busy() bool {
	return m.starting || m.refreshing ||
		m.view.Submit.InFlight() || m.view.Acquire.InFlight() || m.view.Save.InFlight()
}

func (m *Model) activeList() *diarylist.Model {
	switch m.state {
	case constants.StateRead:
		return &m.received
	case constants.StateCollection:
		return &m.collection
	case constants.StateNotifications:
		return &m.notifications
	case constants.StateMine:
		return &m.mine
	}
	return nil
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	// tabs, status, banner, message and help lines plus docStyle padding
	w := max(width-4, 0)
	h := max(height-9, 0)
	for _, l := range []*diarylist.Model{&m.received, &m.collection, &m.notifications, &m.mine} {
		l.SetSize(w, h)
	}
	m.inspector.SetSize(w, h)
}

func (m *Model) newWriteForm() {
	draft := m.view.Draft
	m.draft = &draft
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Today's diary").
				Description("Posted anonymously. One entry per day.").
				Lines(8).
				Value(m.draft),
		),
	).WithWidth(max(m.width-4, 40))
}

func (m Model) startCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return startedMsg{err: sess.Start(ctx)}
	}
}

func (m Model) submitCmd(op session.SubmitOp) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return submittedMsg{err: sess.CompleteSubmit(ctx, op)}
	}
}

func (m Model) acquireCmd(op session.AcquireOp) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		_, err := sess.CompleteAcquire(ctx, op)
		return acquiredMsg{err: err}
	}
}

func (m Model) saveCmd(op session.SaveOp) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return savedMsg{err: sess.CompleteSave(ctx, op)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return refreshedMsg{err: sess.Refresh(ctx)}
	}
}
