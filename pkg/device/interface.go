package device

// Device defines the interface for the range station board (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	ToggleMeasure() error
	ToggleHold() error
	SetBarrier(open bool) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
