package main

import (
	"machine"

	"github.com/rangescope/rangescope/pkg/gpio"
)

var _ gpio.Port = machinePort{}

// machinePort adapts the board's pins to the gpio.Port interface so the
// display multiplexer and LED code drive real hardware.
type machinePort struct{}

func (machinePort) Init(p gpio.Pin) error {
	mode := machine.PinOutput
	if p.Dir == gpio.Input {
		mode = machine.PinInput
	}
	machine.Pin(p.ID).Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (machinePort) Set(id uint8, high bool) error {
	machine.Pin(id).Set(high)
	return nil
}
