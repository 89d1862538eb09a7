package alert

import (
	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/gpio"
)

// Band classifies a target distance into LED indicator levels. Closer
// targets light fewer LEDs; the bar fills up as the target moves away.
type Band int

const (
	BandOff  Band = iota // Below the near threshold, no LED lit
	BandNear             // One LED
	BandMid              // Two LEDs
	BandFar              // All three LEDs
)

// String returns a short label for status displays.
func (b Band) String() string {
	switch b {
	case BandOff:
		return "off"
	case BandNear:
		return "near"
	case BandMid:
		return "mid"
	case BandFar:
		return "far"
	default:
		return "unknown"
	}
}

// Classify maps a distance in centimeters onto a Band using the configured
// thresholds.
func Classify(distance float64, cfg *config.Config) Band {
	switch {
	case distance < cfg.Bands.Near:
		return BandOff
	case distance < cfg.Bands.Mid:
		return BandNear
	case distance < cfg.Bands.Far:
		return BandMid
	default:
		return BandFar
	}
}

// Level returns the number of LEDs lit for a band.
func Level(b Band) int {
	switch b {
	case BandNear:
		return 1
	case BandMid:
		return 2
	case BandFar:
		return 3
	default:
		return 0
	}
}

// Apply drives the indicator LEDs through a gpio.Port: the first Level(b)
// pins go high, the rest low. Pins are ordered nearest band first.
func Apply(port gpio.Port, ledPins []uint8, b Band) error {
	lit := Level(b)
	for i, id := range ledPins {
		if err := port.Set(id, i < lit); err != nil {
			return err
		}
	}
	return nil
}

// SpeedBand classifies approach speed for the status line.
type SpeedBand int

const (
	SpeedOk      SpeedBand = iota // Safe approach speed
	SpeedCaution                  // Approaching fast, slow down
	SpeedDanger                   // Too fast for the scale area
)

// Approach speed thresholds in cm/s (speed magnitude).
const (
	cautionSpeed = 150.0
	dangerSpeed  = 300.0
)

// ClassifySpeed maps a speed magnitude in cm/s onto a SpeedBand.
func ClassifySpeed(speed float64) SpeedBand {
	if speed < 0 {
		speed = -speed
	}
	switch {
	case speed >= dangerSpeed:
		return SpeedDanger
	case speed >= cautionSpeed:
		return SpeedCaution
	default:
		return SpeedOk
	}
}

// Message returns the warning text for the status line.
func (s SpeedBand) Message() string {
	switch s {
	case SpeedCaution:
		return "Caution: slow down"
	case SpeedDanger:
		return "Danger: approach too fast"
	default:
		return "Speed OK"
	}
}
