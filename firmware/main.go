//go:generate tinygo flash -target=esp32-coreboard-v2

package main

import (
	"machine"
	"time"

	"github.com/rangescope/rangescope/pkg/display"
	"github.com/rangescope/rangescope/pkg/gpio"
)

var (
	adcScale1 machine.ADC
	adcScale2 machine.ADC
	uart      = machine.UART0

	// Board state
	measuring   = true
	hold        bool
	barrierOpen bool

	// Scale ADC averaging - running sums and counts
	scale1Sum   uint32
	scale2Sum   uint32
	scaleCount  int // Current count of samples (resets after NUM_SAMPLES)
	lastADCRead time.Time

	// Last ranged distance in centimeters (kept while measurement is paused)
	distanceCM uint16

	refresher *display.Refresher
)

var ledPins = [3]uint8{PIN_LED0, PIN_LED1, PIN_LED2}

func main() {
	// Configure ranger pins
	PIN_TRIGGER.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_TRIGGER.Low()
	PIN_ECHO.Configure(machine.PinConfig{Mode: machine.PinInput})

	// Barrier starts closed
	PIN_BARRIER.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_BARRIER.Low()

	// Configure scale ADC pins with highest resolution
	PIN_SCALE1_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_SCALE2_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcScale1 = machine.ADC{Pin: PIN_SCALE1_ADC}
	adcScale2 = machine.ADC{Pin: PIN_SCALE2_ADC}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcScale1.Configure(adcConfig)
	adcScale2.Configure(adcConfig)

	// Configure UART for host commands and sample output
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Build the multiplexed digit display over the board pins
	port := machinePort{}
	data := [display.DataBits]gpio.Pin{
		gpio.Out(PIN_DATA0),
		gpio.Out(PIN_DATA1),
		gpio.Out(PIN_DATA2),
		gpio.Out(PIN_DATA3),
	}
	sel := []gpio.Pin{
		gpio.Out(PIN_SELECT0),
		gpio.Out(PIN_SELECT1),
		gpio.Out(PIN_SELECT2),
	}
	mux, err := display.New(port, data, sel)
	if err != nil {
		// Pin setup cannot fail on this board; halt visibly if it does
		for {
			time.Sleep(time.Second)
		}
	}
	refresher = display.NewRefresher(mux, REFRESH_MS*time.Millisecond)
	refresher.Start()

	// Band indicator LEDs
	for _, id := range ledPins {
		port.Init(gpio.Out(id))
	}

	lastADCRead = time.Now()

	// Main loop
	for {
		now := time.Now()

		// Check for serial input (non-blocking)
		processSerial()

		// Accumulate scale readings at a fixed rate
		if now.Sub(lastADCRead) >= SAMPLE_INTERVAL_MS*time.Millisecond {
			scale1Sum += uint32(adcScale1.Get())
			scale2Sum += uint32(adcScale2.Get())
			scaleCount++
			lastADCRead = now
		}

		// Output an averaged sample once enough scale readings accumulated
		if scaleCount >= NUM_SAMPLES {
			if measuring {
				distanceCM = measureDistance()
			}

			updateDisplay()
			updateLeds(port)
			outputSample()

			scale1Sum = 0
			scale2Sum = 0
			scaleCount = 0
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

// measureDistance fires the ultrasonic trigger and times the echo pulse.
// Returns the distance in centimeters, or the previous value on timeout.
func measureDistance() uint16 {
	// 10µs trigger pulse starts a measurement cycle
	PIN_TRIGGER.High()
	wait(10)
	PIN_TRIGGER.Low()

	// Wait for echo to go high
	start := time.Now()
	for !PIN_ECHO.Get() {
		if time.Since(start) > ECHO_TIMEOUT*time.Microsecond {
			return distanceCM
		}
	}

	// Time the echo pulse width
	echoStart := time.Now()
	for PIN_ECHO.Get() {
		if time.Since(echoStart) > ECHO_TIMEOUT*time.Microsecond {
			return distanceCM
		}
	}

	micros := time.Since(echoStart).Microseconds()
	return uint16(micros / US_PER_CM)
}

// wait busy-loops for the given number of microseconds. time.Sleep is too
// coarse for the trigger pulse on this target.
func wait(us int64) {
	start := time.Now()
	for time.Since(start) < time.Duration(us)*time.Microsecond {
	}
}

// updateDisplay pushes the current distance to the digit display. Hold
// freezes the shown value; pausing measurement freezes it too since the
// distance stops changing.
func updateDisplay() {
	if hold || !measuring {
		return
	}
	// Out-of-range values keep the previous digits
	_ = refresher.Set(uint32(distanceCM))
}

// updateLeds drives the band indicator LEDs from the current distance:
// one more LED per crossed threshold.
func updateLeds(port gpio.Port) {
	lit := 0
	switch {
	case distanceCM >= BAND_FAR:
		lit = 3
	case distanceCM >= BAND_MID:
		lit = 2
	case distanceCM >= BAND_NEAR:
		lit = 1
	}
	for i, id := range ledPins {
		port.Set(id, i < lit)
	}
}

// outputSample prints one CSV line with the averaged scale readings.
// Format: "unix_micros,distance,scale1,scale2,MH\n"
func outputSample() {
	n := scaleCount
	if n == 0 {
		n = 1 // Avoid division by zero
	}
	scale1Avg := uint16(scale1Sum / uint32(n))
	scale2Avg := uint16(scale2Sum / uint32(n))

	timestampMicros := time.Now().UnixNano() / 1000

	print(timestampMicros)
	print(",")
	print(distanceCM)
	print(",")
	print(scale1Avg)
	print(",")
	print(scale2Avg)
	print(",")
	if measuring {
		print("1")
	} else {
		print("0")
	}
	if hold {
		print("1")
	} else {
		print("0")
	}
	print("\n")
}

// processSerial handles single-byte host commands.
func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		switch data {
		case 'O':
			measuring = !measuring
		case 'H':
			hold = !hold
		case 'A':
			barrierOpen = true
			PIN_BARRIER.High()
		case 'C':
			barrierOpen = false
			PIN_BARRIER.Low()
		case '\n', '\r', ' ', '\t':
			// Line terminators and whitespace between commands
		default:
			// Unknown command byte - ignore
		}
	}
}
