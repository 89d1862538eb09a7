package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rangescope/rangescope/pkg/device"
	"github.com/rangescope/rangescope/pkg/tracker"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	// Create tabs
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createBandsTab(state),
		createMeasurementTab(state),
		createScaleTab(state),
		createMockTab(state),
	)

	// Create dialog with tabs as content
	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := device.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - will be called on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(fmt.Sprintf("%d", state.cfg.Serial.Baud))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil {
				state.cfg.Serial.Baud = baud
			}
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected // Fallback to selected text
				}

				// Check if port changed and device is connected
				portChanged := state.cfg.Serial.Port != selectedPort
				wasConnected := state.device != nil && state.device.IsConnected()

				state.cfg.Serial.Port = selectedPort
				if err := state.cfg.Save("config.yaml"); err != nil {
					dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
					return
				}

				// If port changed and device was connected, restart the measurement chain
				if portChanged && wasConnected {
					// Gracefully close old chain
					closeMeasurementChain(state.chain)
					state.chain = nil

					// Close old device
					if state.device != nil {
						state.device.Close()
						state.device = nil
					}

					// Reconnect with new port
					handleConnect(state)
				}
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createBandsTab creates the distance band configuration tab.
func createBandsTab(state *appState) *container.TabItem {
	nearEntry := widget.NewEntry()
	nearEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Bands.Near))

	midEntry := widget.NewEntry()
	midEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Bands.Mid))

	farEntry := widget.NewEntry()
	farEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Bands.Far))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Near threshold (cm)", Widget: nearEntry},
			{Text: "Mid threshold (cm)", Widget: midEntry},
			{Text: "Far threshold (cm)", Widget: farEntry},
		},
		OnSubmit: func() {
			if near, err := strconv.ParseFloat(nearEntry.Text, 64); err == nil {
				state.cfg.Bands.Near = near
			}
			if mid, err := strconv.ParseFloat(midEntry.Text, 64); err == nil {
				state.cfg.Bands.Mid = mid
			}
			if far, err := strconv.ParseFloat(farEntry.Text, 64); err == nil {
				state.cfg.Bands.Far = far
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Bands", form)
}

// createMeasurementTab creates the Measurement configuration tab.
func createMeasurementTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Measurement.WindowSeconds))

	haltThresholdEntry := widget.NewEntry()
	haltThresholdEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Measurement.HaltThreshold))

	minHaltDurationEntry := widget.NewEntry()
	minHaltDurationEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Measurement.MinHaltDuration))

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(fmt.Sprintf("%d", state.cfg.Measurement.AverageSamples))

	weighSamplesEntry := widget.NewEntry()
	weighSamplesEntry.SetText(fmt.Sprintf("%d", state.cfg.Measurement.WeighSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Halt Threshold (cm/s)", Widget: haltThresholdEntry},
			{Text: "Min Halt Duration (s)", Widget: minHaltDurationEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
			{Text: "Weigh Samples", Widget: weighSamplesEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil {
				state.cfg.Measurement.WindowSeconds = ws
			}
			if ht, err := strconv.ParseFloat(haltThresholdEntry.Text, 64); err == nil {
				state.cfg.Measurement.HaltThreshold = ht
			}
			if mhd, err := strconv.ParseFloat(minHaltDurationEntry.Text, 64); err == nil {
				state.cfg.Measurement.MinHaltDuration = mhd
			}
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil {
				state.cfg.Measurement.AverageSamples = avg
			}
			if wsam, err := strconv.Atoi(weighSamplesEntry.Text); err == nil {
				state.cfg.Measurement.WeighSamples = wsam
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
			// Recreate tracker with new config
			state.tracker = tracker.New(state.cfg)
		},
	}

	return container.NewTabItem("Measurement", form)
}

// createScaleTab creates the strain-gauge scale configuration tab.
func createScaleTab(state *appState) *container.TabItem {
	vrefEntry := widget.NewEntry()
	vrefEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Scale.VRefMilliVolts))

	fullScaleEntry := widget.NewEntry()
	fullScaleEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Scale.FullScaleKg))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "ADC VRef (mV)", Widget: vrefEntry},
			{Text: "Full Scale (kg)", Widget: fullScaleEntry},
		},
		OnSubmit: func() {
			if vref, err := strconv.ParseFloat(vrefEntry.Text, 64); err == nil {
				state.cfg.Scale.VRefMilliVolts = vref
			}
			if fs, err := strconv.ParseFloat(fullScaleEntry.Text, 64); err == nil {
				state.cfg.Scale.FullScaleKg = fs
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Scale", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	startDistanceEntry := widget.NewEntry()
	startDistanceEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.StartDistance))

	approachSpeedEntry := widget.NewEntry()
	approachSpeedEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.ApproachSpeed))

	haltDistanceEntry := widget.NewEntry()
	haltDistanceEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.HaltDistance))

	haltDurationEntry := widget.NewEntry()
	haltDurationEntry.SetText(state.cfg.Mock.HaltDuration.String())

	weightEntry := widget.NewEntry()
	weightEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.WeightKg))

	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseLevel))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Start Distance (cm)", Widget: startDistanceEntry},
			{Text: "Approach Speed (cm/s)", Widget: approachSpeedEntry},
			{Text: "Halt Distance (cm)", Widget: haltDistanceEntry},
			{Text: "Halt Duration", Widget: haltDurationEntry},
			{Text: "Weight (kg)", Widget: weightEntry},
			{Text: "Noise Level (cm)", Widget: noiseLevelEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if sd, err := strconv.ParseFloat(startDistanceEntry.Text, 64); err == nil {
				state.cfg.Mock.StartDistance = sd
			}
			if as, err := strconv.ParseFloat(approachSpeedEntry.Text, 64); err == nil {
				state.cfg.Mock.ApproachSpeed = as
			}
			if hd, err := strconv.ParseFloat(haltDistanceEntry.Text, 64); err == nil {
				state.cfg.Mock.HaltDistance = hd
			}
			if hdur, err := time.ParseDuration(haltDurationEntry.Text); err == nil {
				state.cfg.Mock.HaltDuration = hdur
			}
			if w, err := strconv.ParseFloat(weightEntry.Text, 64); err == nil {
				state.cfg.Mock.WeightKg = w
			}
			if nl, err := strconv.ParseFloat(noiseLevelEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = nl
			}
			if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = sr
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
