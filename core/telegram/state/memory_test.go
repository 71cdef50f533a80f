package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateLifecycle(t *testing.T) {
	m := NewMemoryManager()

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))

	m.SetState(1, State("awaiting_email"))
	assert.Equal(t, State("awaiting_email"), m.GetState(1))
	assert.True(t, m.InProgress(1))
	assert.False(t, m.InProgress(2))

	m.ClearState(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))
}

func TestTempData(t *testing.T) {
	m := NewMemoryManager()

	_, ok := m.GetTempString(7, "text")
	assert.False(t, ok)

	m.SetTemp(7, "text", "hello")
	m.SetTemp(7, "paid", true)

	s, ok := m.GetTempString(7, "text")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	b, ok := m.GetTempBool(7, "paid")
	assert.True(t, ok)
	assert.True(t, b)

	// Wrong type reads miss instead of panicking.
	_, ok = m.GetTempBool(7, "text")
	assert.False(t, ok)

	m.ClearTemp(7, "text")
	_, ok = m.GetTempString(7, "text")
	assert.False(t, ok)

	b, ok = m.GetTempBool(7, "paid")
	assert.True(t, ok)
	assert.True(t, b)
}

func TestClearDropsWholeSession(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(3, State("broadcast_text"))
	m.SetTemp(3, "paid", false)

	m.Clear(3)

	assert.Equal(t, StateIdle, m.GetState(3))
	_, ok := m.GetTempBool(3, "paid")
	assert.False(t, ok)
}
