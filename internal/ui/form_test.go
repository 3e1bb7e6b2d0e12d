package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func press(m formModel, key tea.KeyMsg) formModel {
	next, _ := m.Update(key)
	return next.(formModel)
}

func TestFormSubmit(t *testing.T) {
	m := newFormModel(".", "sms_backup.csv")
	assert.Equal(t, 0, m.focus)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.focus)
	assert.False(t, m.submitted)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.submitted)
	assert.Equal(t, ".", m.value(0))
	assert.Equal(t, "sms_backup.csv", m.value(1))
	assert.Empty(t, m.View())
}

func TestFormTyping(t *testing.T) {
	m := newFormModel("", "out.csv")
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/evidence")})
	assert.Equal(t, "/evidence", m.value(0))
}

func TestFormRequiresBothFields(t *testing.T) {
	m := newFormModel("/evidence", "")
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.submitted)
	assert.Equal(t, "both fields are required", m.err)
	assert.Contains(t, m.View(), "both fields are required")
}

func TestFormFocusWraps(t *testing.T) {
	m := newFormModel("a", "b")
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, m.focus)
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.focus)
}

func TestFormCancel(t *testing.T) {
	m := newFormModel("a", "b")
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.cancelled)
	assert.False(t, m.submitted)
}
