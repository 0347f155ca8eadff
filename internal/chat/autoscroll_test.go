package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoscroll_ScrollsOnChangeOnly(t *testing.T) {
	calls := 0
	var lastLength int
	var lastWaiting bool
	a := NewAutoscroll(func(length int, waiting bool) {
		calls++
		lastLength, lastWaiting = length, waiting
	})

	a.Observe(0, false)
	assert.Equal(t, 1, calls, "first observation scrolls")

	a.Observe(0, false)
	assert.Equal(t, 1, calls, "unchanged state does not scroll")

	a.Observe(1, false)
	assert.Equal(t, 2, calls, "new message scrolls")

	a.Observe(1, true)
	assert.Equal(t, 3, calls, "typing indicator appearing scrolls")
	assert.Equal(t, 1, lastLength)
	assert.True(t, lastWaiting)

	a.Observe(2, false)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, lastLength, "the hook sees the state that triggered it")
	assert.False(t, lastWaiting)
}

func TestAutoscroll_NilHook(t *testing.T) {
	a := NewAutoscroll(nil)
	assert.NotPanics(t, func() { a.Observe(3, true) })
}
