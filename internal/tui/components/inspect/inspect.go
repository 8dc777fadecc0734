package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/utils"
)

var (
	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// CloseMsg asks the parent to leave the inspector.
type CloseMsg struct{}

var closeKey = key.NewBinding(
	key.WithKeys("esc", "q", "backspace"),
	key.WithHelp("esc", "back"),
)

type Model struct {
	viewport viewport.Model
	Diary    *models.Diary
	loc      *time.Location
	width    int
}

func New(loc *time.Location, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		loc:      loc,
		width:    width,
	}
}

// SetDiary shows d from the top.
func (m *Model) SetDiary(d models.Diary) {
	m.Diary = &d
	m.render()
	m.viewport.GotoTop()
}

func (m *Model) render() {
	if m.Diary == nil {
		m.viewport.SetContent("")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	meta := "written " + utils.FormatLocal(m.Diary.CreatedAt.Time, m.loc)
	if m.Diary.SavedAt != nil {
		meta += " · kept " + utils.FormatLocal(m.Diary.SavedAt.Time, m.loc)
	}
	if m.Diary.SavedCount != nil {
		meta += " · saved by " + plural(m.Diary.Saves())
	}
	b.WriteString(metaStyle.Render(meta))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Width(width).Render(m.Diary.Content))
	m.viewport.SetContent(b.String())
}

func plural(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, closeKey) {
		return m, func() tea.Msg { return CloseMsg{} }
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Diary == nil {
		return ""
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

// CloseKey is the binding that leaves the inspector.
func CloseKey() key.Binding {
	return closeKey
}
