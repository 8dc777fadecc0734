package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/tui/components/diarylist"
	"github.com/julianstephens/tokumei/internal/tui/components/inspect"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startedMsg:
		m.starting = false
		if msg.err != nil {
			logger.Component("tui").Warn("startup incomplete", "error", msg.err)
		}
		m.sync()
		return m, nil

	case submittedMsg, acquiredMsg, savedMsg:
		m.sync()
		return m, nil

	case refreshedMsg:
		m.refreshing = false
		m.sync()
		return m, nil

	case diarylist.InspectMsg:
		if d, ok := m.sess.Inspect(msg.Diary.ID); ok {
			m.inspector.SetDiary(d)
			m.previousState = m.state
			m.state = constants.StateInspect
		}
		return m, nil

	case diarylist.SaveMsg:
		m.confirmID = msg.ID
		m.previousState = m.state
		m.state = constants.StateConfirmSave
		return m, nil

	case inspect.CloseMsg:
		m.sess.ClearSelection()
		m.state = m.previousState
		return m, nil
	}

	switch m.state {
	case constants.StateEditing:
		return m.updateForm(msg)
	case constants.StateInspect:
		var cmd tea.Cmd
		m.inspector, cmd = m.inspector.Update(msg)
		return m, cmd
	case constants.StateConfirmSave:
		return m.updateConfirmSave(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Tab):
		m.state = m.nextTab(1)
		m.sess.ClearMessage()
		m.sync()
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.state = m.nextTab(-1)
		m.sess.ClearMessage()
		m.sync()
		return m, nil
	case key.Matches(keyMsg, m.keys.Refresh):
		if m.starting || m.refreshing || m.view.Degraded() {
			return m, nil
		}
		m.refreshing = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())
	}

	switch m.state {
	case constants.StateWrite:
		if key.Matches(keyMsg, m.keys.Write, m.keys.Enter) && m.view.CanSubmit() {
			m.newWriteForm()
			m.state = constants.StateEditing
			return m, m.form.Init()
		}
		return m, nil
	case constants.StateRead:
		if key.Matches(keyMsg, m.keys.Receive) {
			return m.receive()
		}
	}

	if l := m.activeList(); l != nil {
		var cmd tea.Cmd
		*l, cmd = l.Update(keyMsg)
		return m, cmd
	}
	return m, nil
}

func (m Model) nextTab(step int) constants.SessionState {
	n := len(constants.MainStates)
	for i, s := range constants.MainStates {
		if s == m.state {
			return constants.MainStates[(i+step+n)%n]
		}
	}
	return constants.StateWrite
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.sess.SetDraft(*m.draft)
		m.state = constants.StateWrite
		m.sync()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit(*m.draft)
	case huh.StateAborted:
		m.sess.SetDraft(*m.draft)
		m.state = constants.StateWrite
		m.sync()
		return m, nil
	}
	return m, cmd
}

// submit starts posting text. A rejected submission leaves the draft in
// place so it can be edited and retried.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.state = constants.StateWrite
	m.sess.SetDraft(text)
	op, err := m.sess.BeginSubmit(text)
	m.sync()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.submitCmd(op))
}

func (m Model) receive() (tea.Model, tea.Cmd) {
	op, err := m.sess.BeginAcquire()
	m.sync()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.acquireCmd(op))
}

func (m Model) updateConfirmSave(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.state = m.previousState
		id := m.confirmID
		m.confirmID = ""
		op, err := m.sess.BeginSave(id)
		m.sync()
		if err != nil {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, m.saveCmd(op))
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = m.previousState
		m.confirmID = ""
	}
	return m, nil
}
