package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rangescope/rangescope/pkg/alert"
	"github.com/rangescope/rangescope/pkg/bcd"
	"github.com/rangescope/rangescope/pkg/device"
	"github.com/rangescope/rangescope/pkg/sample"
	"github.com/rangescope/rangescope/pkg/tracker"
)

// handleMeasureToggle handles the measure button click.
func handleMeasureToggle(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}

	if err := state.device.ToggleMeasure(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to toggle measurement: %w", err), state.window)
		return
	}

	// Optimistic update; the board echoes the real state in every sample
	state.boardState[0] = !state.boardState[0]
	updateControlButtonStates(state)
}

// handleHoldToggle handles the hold button click.
func handleHoldToggle(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}

	if err := state.device.ToggleHold(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to toggle hold: %w", err), state.window)
		return
	}

	state.boardState[1] = !state.boardState[1]
	updateControlButtonStates(state)
}

// handleBarrierToggle handles the barrier button click.
func handleBarrierToggle(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}

	open := !state.barrierOpen
	if err := state.device.SetBarrier(open); err != nil {
		dialog.ShowError(fmt.Errorf("failed to set barrier: %w", err), state.window)
		return
	}

	state.barrierOpen = open
	if open {
		state.barrierBtn.SetText("Barrier open")
	} else {
		state.barrierBtn.SetText("Barrier")
	}
}

// updateBoardStateFromSample updates measure/hold button states from incoming sample.
// Only updates UI when the board flags actually change.
// Uses fyne.Do() to ensure thread-safe UI updates from goroutine.
func updateBoardStateFromSample(state *appState, s device.RawSample) {
	// Check if state changed - arrays are directly comparable in Go
	newState := [2]bool{s.Measuring, s.Hold}
	if state.boardState == newState {
		// No change, skip update
		return
	}

	state.boardState = newState

	// Update UI on main thread using fyne.Do()
	fyne.Do(func() {
		updateControlButtonStates(state)
	})
}

// updateControlButtonStates updates the visual state of the board control buttons.
func updateControlButtonStates(state *appState) {
	updateToggleButton(state.measureBtn, state.boardState[0])
	updateToggleButton(state.holdBtn, state.boardState[1])
}

// updateToggleButton updates a single toggle button's visual state.
func updateToggleButton(btn *widget.Button, isOn bool) {
	if isOn {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}

// updateStatusBar refreshes the readouts at the bottom of the window.
// Must be called on the main Fyne thread.
func updateStatusBar(state *appState, samples []sample.Sample, halts []tracker.Halt) {
	if len(samples) == 0 {
		return
	}

	latest := samples[len(samples)-1]
	state.distanceLabel.SetText(fmt.Sprintf("Distance: %.1f cm", latest.Distance))

	band := alert.Classify(latest.Distance, state.cfg)
	speedBand := alert.ClassifySpeed(state.tracker.MaxSpeed())
	state.bandLabel.SetText(fmt.Sprintf("Band: %s", band))
	state.speedLabel.SetText(fmt.Sprintf("Max speed: %.1f cm/s (%s)", state.tracker.MaxSpeed(), speedBand.Message()))

	if len(halts) > 0 {
		state.weightLabel.SetText(fmt.Sprintf("Weight: %.0f kg", halts[len(halts)-1].Weight))
	}

	state.displayLabel.SetText("Display: " + displayPreview(latest, state.cfg.Display.Digits()))
}

// displayPreview renders what the board's multiplexed digit display shows
// for a sample: the distance in whole centimeters, or dashes when the value
// does not fit the digit count.
func displayPreview(s sample.Sample, digitCount int) string {
	digits, err := bcd.Encode(uint32(s.Distance+0.5), digitCount)
	if err != nil {
		return strings.Repeat("-", digitCount)
	}

	var b strings.Builder
	for _, d := range digits {
		b.WriteByte('0' + d)
	}
	return b.String()
}
