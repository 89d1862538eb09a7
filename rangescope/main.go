package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/device"
	"github.com/rangescope/rangescope/pkg/sample"
	"github.com/rangescope/rangescope/pkg/scope"
	"github.com/rangescope/rangescope/pkg/tracker"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked device instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override average samples if provided via command line
	if *averageSamplesFlag >= 0 {
		cfg.Measurement.AverageSamples = *averageSamplesFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.rangescope.rangescope")

	// Create main window
	window := application.NewWindow("Range Station")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	// Create motion tracker
	motionTracker := tracker.New(cfg)

	// Create application state
	appState := &appState{
		cfg:     cfg,
		device:  nil,
		tracker: motionTracker,
		window:  window,
		useMock: *mockFlag,
	}

	// Create toolbar
	toolbar := createToolbar(appState)

	// Create scope widget for graph display
	scopeWidget := scope.New(cfg)
	appState.scopeWidget = scopeWidget

	// Create status bar at the bottom
	statusBar := createStatusBar(appState)

	// Create border layout with toolbar at top, status bar at bottom, and
	// scope widget as content
	content := container.NewBorder(
		toolbar,
		statusBar,
		nil,
		nil,
		scopeWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device              device.Device
	rawSamples          <-chan device.RawSample
	rawSamplesForBoard  <-chan device.RawSample
	rawSamplesForChain  <-chan device.RawSample
	boardStateGoroutine chan struct{} // Closed when board state goroutine exits
	samplesStream       <-chan sample.Sample
	trackerGoroutine    chan struct{} // Closed when tracker goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	device      device.Device
	tracker     *tracker.Tracker
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	measureBtn  *widget.Button
	holdBtn     *widget.Button
	barrierBtn  *widget.Button
	useMock     bool
	boardState  [2]bool           // Current board flags [measuring, hold]
	barrierOpen bool              // Last commanded barrier state
	chain       *measurementChain // Current measurement chain (nil if not connected)

	// Status bar labels
	distanceLabel *widget.Label
	bandLabel     *widget.Label
	speedLabel    *widget.Label
	weightLabel   *widget.Label
	displayLabel  *widget.Label

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect, Settings,
// Measure, Hold, and Barrier buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	// Connect button with icon
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	// Settings button with icon
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// Measure toggle: starts/pauses ranging on the board
	measureBtn := widget.NewButtonWithIcon("Measure", theme.MediaPlayIcon(), func() {
		handleMeasureToggle(state)
	})
	measureBtn.Disable()
	state.measureBtn = measureBtn

	// Hold toggle: freezes the board display at the current value
	holdBtn := widget.NewButtonWithIcon("Hold", theme.MediaPauseIcon(), func() {
		handleHoldToggle(state)
	})
	holdBtn.Disable()
	state.holdBtn = holdBtn

	// Barrier open/close for the weighing area
	barrierBtn := widget.NewButtonWithIcon("Barrier", theme.MoveUpIcon(), func() {
		handleBarrierToggle(state)
	})
	barrierBtn.Disable()
	state.barrierBtn = barrierBtn

	// Toolbar with connection controls on the left, board controls on the right
	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn),         // left
		container.NewHBox(measureBtn, holdBtn, barrierBtn), // right
		nil, // center (spacer)
	)
}

// createStatusBar creates the bottom status bar with live readouts.
func createStatusBar(state *appState) fyne.CanvasObject {
	state.distanceLabel = widget.NewLabel("Distance: --")
	state.bandLabel = widget.NewLabel("Band: --")
	state.speedLabel = widget.NewLabel("Max speed: --")
	state.weightLabel = widget.NewLabel("Weight: --")
	state.displayLabel = widget.NewLabel("Display: ---")

	return container.NewHBox(
		state.distanceLabel,
		state.bandLabel,
		state.speedLabel,
		state.weightLabel,
		state.displayLabel,
	)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for all goroutines to finish and channels to drain.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the rawSamples channel
	if chain.device != nil {
		chain.device.Close()
	}

	// Wait for board state goroutine to finish
	if chain.boardStateGoroutine != nil {
		<-chain.boardStateGoroutine
	}

	// Wait for tracker goroutine to finish
	// The tracker goroutine will exit when samplesStream closes
	// The samplesStream will close when converters finish draining
	if chain.trackerGoroutine != nil {
		<-chain.trackerGoroutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		// Disconnect - gracefully close measurement chain
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		// Connect button icon doesn't change
		state.measureBtn.Disable()
		state.holdBtn.Disable()
		state.barrierBtn.Disable()
		// Reset board flags
		state.boardState = [2]bool{false, false}
		updateControlButtonStates(state)
		if state.useMock {
			fmt.Println("Disconnected from mocked device")
		} else {
			fmt.Println("Disconnected from serial port")
		}
	} else {
		// Connect
		var dev device.Device
		if state.useMock {
			dev = device.NewMock(&state.cfg.Mock)
			fmt.Println("Using mocked device")
		} else {
			dev = device.New(state.cfg.Serial.Port, state.cfg.Serial.Baud, device.DefaultBufferSize)
		}

		if err := dev.Connect(); err != nil {
			if state.useMock {
				dialog.ShowError(fmt.Errorf("failed to connect to mocked device: %w", err), state.window)
			} else {
				dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
			}
			return
		}
		state.device = dev
		if state.useMock {
			fmt.Printf("Connected to mocked device\n")
		} else {
			fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
		}

		// Enable board control buttons
		state.measureBtn.Enable()
		state.holdBtn.Enable()
		state.barrierBtn.Enable()

		// Reset tracker shutdown flag for new chain
		state.tracker.ResetShutdown()

		// Register callback with tracker to update scope widget and status bar.
		// This must be done before starting the measurement chain.
		state.tracker.OnUpdate(newScopeUpdater(state))

		// Create converter pipeline with chaining support
		rawSamples := dev.Samples()

		// Tee raw samples: one branch for board flag updates, one for the
		// converter chain. Every sample must reach both.
		rawSamplesForBoard, rawSamplesForConverter := teeChannel(rawSamples)

		// Track goroutines for graceful shutdown
		boardStateDone := make(chan struct{})
		trackerDone := make(chan struct{})

		// Update board flags from raw samples (only when state changes)
		go func() {
			defer close(boardStateDone)
			for rawSample := range rawSamplesForBoard {
				updateBoardStateFromSample(state, rawSample)
			}
		}()

		// Chain converters: base converter always used, averaging converter conditionally
		// If average_samples is 0, skip averaging; if > 0, chain averaging converter
		// Increase buffer size to prevent channel full errors
		baseStream := sample.NewConverter(state.cfg, 500)(rawSamplesForConverter)

		var samplesStream <-chan sample.Sample
		if state.cfg.Measurement.AverageSamples > 0 {
			// Chain averaging converter when enabled (for already-converted samples)
			samplesStream = sample.NewAveragingConverterForSamples(state.cfg.Measurement.AverageSamples, 500)(baseStream)
		} else {
			// No averaging, use base stream directly
			samplesStream = baseStream
		}

		// Process samples through motion tracker (starts measurement automatically)
		go func() {
			defer close(trackerDone)
			state.tracker.ProcessSamples(samplesStream)
		}()

		// Store chain for graceful shutdown
		state.chain = &measurementChain{
			device:              dev,
			rawSamples:          rawSamples,
			rawSamplesForBoard:  rawSamplesForBoard,
			rawSamplesForChain:  rawSamplesForConverter,
			boardStateGoroutine: boardStateDone,
			samplesStream:       samplesStream,
			trackerGoroutine:    trackerDone,
		}
	}
}

// teeChannel fans the input out to two channels so that two consumers each
// see every sample. The single reader goroutine is what guarantees the
// duplication; both outputs close when the input closes.
func teeChannel(in <-chan device.RawSample) (<-chan device.RawSample, <-chan device.RawSample) {
	a := make(chan device.RawSample, 100)
	b := make(chan device.RawSample, 100)

	go func() {
		defer close(a)
		defer close(b)
		for s := range in {
			a <- s
			b <- s
		}
	}()

	return a, b
}
