package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderSetRequiresInit(t *testing.T) {
	r := NewRecorder()

	err := r.Set(3, true)
	assert.Error(t, err)

	require.NoError(t, r.Init(Out(3)))
	require.NoError(t, r.Set(3, true))
	assert.True(t, r.Level(3))
}

func TestRecorderRejectsInputPins(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Init(Pin{ID: 5, Dir: Input}))

	err := r.Set(5, true)
	assert.Error(t, err)
	assert.False(t, r.Level(5))
}

func TestRecorderTransitionOrder(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Init(Out(1)))
	require.NoError(t, r.Init(Out(2)))

	require.NoError(t, r.Set(1, true))
	require.NoError(t, r.Set(2, true))
	require.NoError(t, r.Set(1, false))

	want := []Transition{
		{Pin: 1, High: true},
		{Pin: 2, High: true},
		{Pin: 1, High: false},
	}
	assert.Equal(t, want, r.Transitions())

	r.Reset()
	assert.Empty(t, r.Transitions())
	// Levels survive a reset.
	assert.True(t, r.Level(2))
	assert.False(t, r.Level(1))
}
