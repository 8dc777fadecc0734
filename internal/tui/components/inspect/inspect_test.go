package inspect

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tokumei/internal/models"
)

func TestRendersDiary(t *testing.T) {
	m := New(time.UTC, 60, 10)
	assert.Empty(t, m.View())

	saves := 3
	m.SetDiary(models.Diary{
		ID:         "diary-1",
		Content:    "rain all afternoon",
		CreatedAt:  models.NewTimestamp(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)),
		SavedCount: &saves,
	})

	view := m.View()
	assert.Contains(t, view, "rain all afternoon")
	assert.Contains(t, view, "saved by 3 people")
}

func TestCloseKeys(t *testing.T) {
	m := New(time.UTC, 60, 10)
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("q")},
	} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		assert.Equal(t, CloseMsg{}, cmd())
	}
}
