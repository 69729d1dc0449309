package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestView_LoadingBeforeResize(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)
	m.width = 0

	assert.Equal(t, "Loading...", m.View())
}

func TestView_Board(t *testing.T) {
	m, _, clock := newTestModel(t, testDoc)

	view := m.View()
	assert.Contains(t, view, "PROJ-1")
	assert.Contains(t, view, "0/2 completed")
	assert.Contains(t, view, "Write parser")
	assert.Contains(t, view, "Write tests")
	assert.Contains(t, view, "logged 0s")

	drain(m, press(m, "s"))
	clock.Advance(2 * time.Minute)
	m.Update(MsgTick{Now: clock.Now()})

	view = m.View()
	assert.Contains(t, view, "Started todo #1")
	assert.Contains(t, view, "+2m running")
}

func TestView_EmptyBoard(t *testing.T) {
	m, _, _ := newTestModel(t, "")

	assert.Contains(t, m.View(), "No todos yet")
}

func TestView_CommentPrompt(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	press(m, "d")
	view := m.View()
	assert.Contains(t, view, "Complete todo #1, comment:")
	assert.Contains(t, view, "esc cancel")
}

func TestView_ConfirmDialog(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	press(m, "D")
	assert.Contains(t, m.View(), "Remove todo #1?")
}

func TestView_ErrorAndHelp(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	drain(m, press(m, "p"))
	assert.Contains(t, m.View(), "Error:")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Contains(t, m.View(), "Keybindings")
}
