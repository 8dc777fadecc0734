package diarylist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/utils"
)

// InspectMsg asks the parent to open the selected entry.
type InspectMsg struct {
	Diary models.Diary
}

// SaveMsg asks the parent to save the selected entry.
type SaveMsg struct {
	ID string
}

// Detail selects the secondary line shown for each entry.
type Detail int

const (
	DetailCreated Detail = iota
	DetailSaves
	DetailSavedAt
)

type Item struct {
	Diary  models.Diary
	detail Detail
	loc    *time.Location
	saving bool
}

func (i Item) Title() string {
	return i.Diary.Preview(constants.PreviewLength)
}

func (i Item) Description() string {
	desc := utils.FormatLocal(i.Diary.CreatedAt.Time, i.loc)
	switch i.detail {
	case DetailSaves:
		desc += fmt.Sprintf(" | saved %d×", i.Diary.Saves())
	case DetailSavedAt:
		if i.Diary.SavedAt != nil {
			desc += " | kept " + utils.FormatLocal(i.Diary.SavedAt.Time, i.loc)
		}
	}
	if i.saving {
		desc += " | saving..."
	}
	return desc
}

func (i Item) FilterValue() string { return i.Diary.Content }

type KeyMap struct {
	Inspect key.Binding
	Save    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Inspect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
	}
}

type Model struct {
	list     list.Model
	keys     KeyMap
	detail   Detail
	loc      *time.Location
	empty    string
	canSave  bool
	savingID string
	diaries  []models.Diary
}

func New(title, empty string, detail Detail, loc *time.Location, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)

	keys := DefaultKeyMap()
	keys.Save.SetEnabled(false)

	return Model{list: l, keys: keys, detail: detail, loc: loc, empty: empty}
}

// SetDiaries replaces the entries, keeping the cursor in range.
func (m *Model) SetDiaries(diaries []models.Diary) {
	m.diaries = diaries
	m.rebuild()
}

// SetSaving enables the save key and marks the entry being saved.
func (m *Model) SetSaving(canSave bool, savingID string) {
	m.canSave = canSave
	m.keys.Save.SetEnabled(canSave)
	if savingID != m.savingID {
		m.savingID = savingID
		m.rebuild()
	}
}

func (m *Model) rebuild() {
	items := make([]list.Item, len(m.diaries))
	for i, d := range m.diaries {
		items[i] = Item{Diary: d, detail: m.detail, loc: m.loc, saving: d.ID == m.savingID}
	}
	m.list.SetItems(items)
}

// Selected returns the highlighted entry.
func (m Model) Selected() (models.Diary, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Diary{}, false
	}
	return i.Diary, true
}

func (m Model) Len() int {
	return len(m.diaries)
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Inspect):
			if d, ok := m.Selected(); ok {
				return m, func() tea.Msg { return InspectMsg{Diary: d} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Save):
			if d, ok := m.Selected(); ok {
				return m, func() tea.Msg { return SaveMsg{ID: d.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.diaries) == 0 {
		return "\n  " + m.empty
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
