package diarylist

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tokumei/internal/models"
)

func diary(id, content string, saves int) models.Diary {
	return models.Diary{
		ID:         id,
		Content:    content,
		CreatedAt:  models.NewTimestamp(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)),
		SavedCount: &saves,
	}
}

func TestEmptyView(t *testing.T) {
	m := New("Mine", "Nothing here.", DetailSaves, time.UTC, 80, 20)
	assert.Contains(t, m.View(), "Nothing here.")
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestItemDescription(t *testing.T) {
	d := diary("diary-1", "hello\nworld", 2)

	item := Item{Diary: d, detail: DetailSaves, loc: time.UTC}
	assert.Equal(t, "hello world", item.Title())
	assert.Contains(t, item.Description(), "saved 2×")

	item.saving = true
	assert.Contains(t, item.Description(), "saving...")
}

func TestKeysEmitMessages(t *testing.T) {
	m := New("Received", "Nothing yet.", DetailCreated, time.UTC, 80, 20)
	m.SetDiaries([]models.Diary{diary("diary-1", "first", 0), diary("diary-2", "second", 0)})
	require.Equal(t, 2, m.Len())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, InspectMsg{Diary: diary("diary-1", "first", 0)}, cmd())

	// Save is off until enabled.
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd != nil {
		_, isSave := cmd().(SaveMsg)
		assert.False(t, isSave)
	}

	m.SetSaving(true, "")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)
	assert.Equal(t, SaveMsg{ID: "diary-2"}, cmd())
}
