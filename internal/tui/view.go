package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/session"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.starting {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Connecting...",
		)
	}

	var content string
	switch m.state {
	case constants.StateWrite:
		content = m.viewWrite()
	case constants.StateRead:
		content = m.viewRead()
	case constants.StateCollection:
		content = docStyle.Render(m.collection.View())
	case constants.StateNotifications:
		content = docStyle.Render(m.notifications.View())
	case constants.StateMine:
		content = docStyle.Render(m.mine.View())
	case constants.StateEditing:
		content = docStyle.Render(m.form.View())
	case constants.StateInspect:
		content = docStyle.Render(m.inspector.View())
	case constants.StateConfirmSave:
		content = m.viewConfirmSave()
	}

	parts := []string{m.viewTabs(), m.viewStatus()}
	if m.view.Degraded() {
		parts = append(parts, dangerStyle.Render("No identity: posting, receiving and saving are unavailable. Restart to try again."))
	}
	parts = append(parts, content, m.viewMessage(), m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	active := m.state
	switch m.state {
	case constants.StateEditing:
		active = constants.StateWrite
	case constants.StateInspect, constants.StateConfirmSave:
		active = m.previousState
	}

	var tabs []string
	for _, s := range constants.MainStates {
		if s == active {
			tabs = append(tabs, activeTabStyle.Render(tabTitles[s]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tabTitles[s]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	d := m.view.Daily
	if m.view.UserID == "" {
		return statusStyle.Render("offline")
	}
	return statusStyle.Render(fmt.Sprintf("%s · posted %s · received %d/%d · saved %s",
		d.Today, mark(d.HasPostedToday), d.ReceivedCount, daily.MaxReceives, mark(d.HasSavedToday)))
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func (m Model) viewMessage() string {
	var line string
	if m.busy() {
		line = m.spinner.View() + " "
	}

	msg := m.view.Message
	switch msg.Kind {
	case session.Success:
		line += successStyle.Render(msg.Text)
	case session.Failure:
		line += dangerStyle.Render(msg.Text)
	default:
		line += infoStyle.Render(msg.Text)
	}
	return line
}

func (m Model) viewWrite() string {
	var b strings.Builder
	switch {
	case m.view.Submit.InFlight():
		b.WriteString("Posting...")
	case m.view.Daily.HasPostedToday:
		b.WriteString("You posted today. Head to Read to receive others' diaries.")
	case m.view.UserID == "":
		b.WriteString("Writing is unavailable without an identity.")
	default:
		b.WriteString("Press w to write today's diary.")
		if m.view.Draft != "" {
			b.WriteString("\n\n")
			b.WriteString(warningStyle.Render("Unsent draft: " + models.Diary{Content: m.view.Draft}.Preview(constants.PreviewLength)))
		}
	}
	return docStyle.Render(b.String())
}

func (m Model) viewRead() string {
	var header string
	switch d := m.view.Daily; {
	case !d.HasPostedToday:
		header = warningStyle.Render("Post today's diary to start receiving.")
	case m.view.Acquire.InFlight():
		header = "Receiving..."
	default:
		header = fmt.Sprintf("%d receive(s) left today.", d.RemainingReceives())
		if !m.view.CanSave() && d.HasSavedToday {
			header += " You already kept one today."
		}
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.received.View()))
}

func (m Model) viewConfirmSave() string {
	return lipgloss.Place(m.width, max(m.height-6, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warningStyle.Render("Keep this diary? You can save one per day."),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
