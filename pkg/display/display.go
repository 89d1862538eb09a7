// Package display drives a multiplexed N-digit decimal display over a shared
// 4-bit data bus. The digits share the bus: each digit's bit pattern is
// driven while only that digit's select line is asserted, and persistence of
// vision turns the sweep into a steady image when repeated fast enough.
//
// Multiplexer performs exactly one sweep per Render call and never schedules
// its own refresh; Refresher is the periodic caller that produces a
// flicker-free image. The split keeps the bus protocol testable in isolation.
package display

import (
	"errors"
	"fmt"

	"github.com/rangescope/rangescope/pkg/bcd"
	"github.com/rangescope/rangescope/pkg/gpio"
)

// DataBits is the width of the shared data bus: 4 bits cover one decimal
// digit.
const DataBits = 4

var (
	// ErrDigitRange is returned when a digit value outside [0, 9] reaches
	// Render. Such a value indicates caller misuse, not a data condition:
	// its bit pattern would be meaningless on the bus.
	ErrDigitRange = errors.New("display: digit value out of range")
	// ErrDigitLen is returned when the digit sequence length does not match
	// the number of select lines.
	ErrDigitLen = errors.New("display: digit count does not match select lines")
)

// Multiplexer drives digit sequences onto a display through an abstract
// output port. It assumes exclusive ownership of its pins for the duration
// of a call and provides no internal locking; concurrent writers of the same
// bus must serialize outside.
type Multiplexer struct {
	port gpio.Port
	data [DataBits]gpio.Pin
	sel  []gpio.Pin
}

// New binds a multiplexer to its port and pin tables and configures every
// pin as an output. The select table length fixes the digit count.
func New(port gpio.Port, data [DataBits]gpio.Pin, sel []gpio.Pin) (*Multiplexer, error) {
	if len(sel) == 0 {
		return nil, errors.New("display: no select pins")
	}

	m := &Multiplexer{
		port: port,
		data: data,
		sel:  append([]gpio.Pin(nil), sel...),
	}

	for _, p := range m.data {
		if err := port.Init(p); err != nil {
			return nil, fmt.Errorf("display: init data pin %d: %w", p.ID, err)
		}
	}
	for _, p := range m.sel {
		if err := port.Init(p); err != nil {
			return nil, fmt.Errorf("display: init select pin %d: %w", p.ID, err)
		}
	}

	return m, nil
}

// Digits returns the number of digit positions.
func (m *Multiplexer) Digits() int {
	return len(m.sel)
}

// Render performs one multiplexing sweep over the digit sequence. Per digit,
// in order: every select line is deasserted, the data bus is driven to the
// digit's binary value, then that digit's select line is asserted. The
// deassert-all step guarantees at most one digit is lit at any instant, so a
// stale pattern is never visible on the wrong digit.
//
// Render is a single pass with no dwell time; calling it repeatedly at a
// sufficient rate is the caller's responsibility.
func (m *Multiplexer) Render(digits []uint8) error {
	if len(digits) != len(m.sel) {
		return fmt.Errorf("%w: got %d digits, have %d select lines", ErrDigitLen, len(digits), len(m.sel))
	}
	for i, d := range digits {
		if d > 9 {
			return fmt.Errorf("%w: digit %d is %d", ErrDigitRange, i, d)
		}
	}

	for i, d := range digits {
		if err := m.deselectAll(); err != nil {
			return err
		}
		if err := m.driveData(d); err != nil {
			return err
		}
		if err := m.port.Set(m.sel[i].ID, true); err != nil {
			return fmt.Errorf("display: assert select %d: %w", i, err)
		}
	}

	return nil
}

// Show encodes value to the display's digit count and renders it. If the
// value does not fit, nothing is driven and the previously rendered frame
// stays visible.
func (m *Multiplexer) Show(value uint32) error {
	digits, err := bcd.Encode(value, len(m.sel))
	if err != nil {
		return err
	}
	return m.Render(digits)
}

// Off deasserts every select and data line, blanking the display.
func (m *Multiplexer) Off() error {
	if err := m.deselectAll(); err != nil {
		return err
	}
	for _, p := range m.data {
		if err := m.port.Set(p.ID, false); err != nil {
			return fmt.Errorf("display: clear data pin %d: %w", p.ID, err)
		}
	}
	return nil
}

func (m *Multiplexer) deselectAll() error {
	for i, p := range m.sel {
		if err := m.port.Set(p.ID, false); err != nil {
			return fmt.Errorf("display: deassert select %d: %w", i, err)
		}
	}
	return nil
}

func (m *Multiplexer) driveData(digit uint8) error {
	for bit := 0; bit < DataBits; bit++ {
		high := digit&(1<<bit) != 0
		if err := m.port.Set(m.data[bit].ID, high); err != nil {
			return fmt.Errorf("display: drive data bit %d: %w", bit, err)
		}
	}
	return nil
}
