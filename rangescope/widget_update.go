package main

import (
	"time"

	"fyne.io/fyne/v2"
	"github.com/rangescope/rangescope/pkg/sample"
	"github.com/rangescope/rangescope/pkg/tracker"
)

// scopeUpdateInterval throttles scope redraws to roughly 60 FPS so a fast
// sample stream cannot flood the Fyne event loop.
const scopeUpdateInterval = 16 * time.Millisecond

// shouldRedraw reports whether enough time has passed since the last scope
// redraw, and records now as the redraw time when it has.
func (state *appState) shouldRedraw(now time.Time) bool {
	state.updateMu.Lock()
	defer state.updateMu.Unlock()
	if now.Sub(state.lastUpdateTime) < scopeUpdateInterval {
		return false
	}
	state.lastUpdateTime = now
	return true
}

// newScopeUpdater builds the tracker callback that pushes fresh data to the
// scope widget and status bar on the main Fyne thread. Calls arriving faster
// than the throttle interval are dropped; the next one carries the same
// window anyway.
func newScopeUpdater(state *appState) func(samples []sample.Sample, speeds []float64, halts []tracker.Halt) {
	return func(samples []sample.Sample, speeds []float64, halts []tracker.Halt) {
		if !state.shouldRedraw(time.Now()) {
			return
		}

		var weight float64
		if len(samples) > 0 {
			weight = samples[len(samples)-1].Weight
		}

		// The scope widget downsamples internally; pass the full window.
		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, speeds, halts, weight)
			updateStatusBar(state, samples, halts)
		})
	}
}
