package main

import (
	"testing"
	"time"

	"github.com/rangescope/rangescope/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldRedraw_Throttles(t *testing.T) {
	state := &appState{}
	base := time.Now()

	assert.True(t, state.shouldRedraw(base), "First redraw always passes")
	assert.False(t, state.shouldRedraw(base.Add(time.Millisecond)), "Redraw inside the throttle interval is dropped")
	assert.True(t, state.shouldRedraw(base.Add(2*scopeUpdateInterval)), "Redraw after the interval passes")
}

func TestTeeChannel_BothBranchesSeeEverySample(t *testing.T) {
	in := make(chan device.RawSample, 10)
	branchA, branchB := teeChannel(in)

	const n = 20
	go func() {
		for i := 0; i < n; i++ {
			in <- device.RawSample{Distance: uint16(i)}
		}
		close(in)
	}()

	drain := func(ch <-chan device.RawSample) []device.RawSample {
		var out []device.RawSample
		for s := range ch {
			out = append(out, s)
		}
		return out
	}

	gotA := drain(branchA)
	gotB := drain(branchB)

	require.Len(t, gotA, n, "board branch must receive every sample")
	require.Len(t, gotB, n, "converter branch must receive every sample")
	for i := 0; i < n; i++ {
		assert.Equal(t, uint16(i), gotA[i].Distance)
		assert.Equal(t, uint16(i), gotB[i].Distance)
	}
}

func TestTeeChannel_ClosesBothBranches(t *testing.T) {
	in := make(chan device.RawSample)
	branchA, branchB := teeChannel(in)
	close(in)

	_, okA := <-branchA
	_, okB := <-branchB
	assert.False(t, okA, "board branch must close when the input closes")
	assert.False(t, okB, "converter branch must close when the input closes")
}
