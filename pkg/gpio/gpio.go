// Package gpio defines the small pin-binding vocabulary shared by the display
// driver, the LED band table, and the firmware: a pin identifier with a
// configured direction, and a Port through which all electrical state changes
// are issued. The package owns no hardware; a Port implementation does.
package gpio

// Direction is the configured direction of a pin binding.
type Direction uint8

const (
	// Output configures a pin as an output.
	Output Direction = iota
	// Input configures a pin as an input.
	Input
)

// Pin is an output-pin binding: a physical pin identifier plus its
// direction. It is a plain value with no behavior; ownership of the
// underlying physical resource stays with the embedding system.
type Pin struct {
	ID  uint8
	Dir Direction
}

// Out returns an output binding for the given pin identifier.
func Out(id uint8) Pin {
	return Pin{ID: id, Dir: Output}
}

// Port is the abstract digital output port. Implementations map Init and Set
// onto whatever backs the pins: MCU registers on the firmware side, or an
// in-memory recorder on the host side.
type Port interface {
	// Init configures the pin's direction. It must be called before Set.
	Init(p Pin) error
	// Set drives the pin high or low.
	Set(id uint8, high bool) error
}
