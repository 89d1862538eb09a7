package gpio

import (
	"fmt"
	"sync"
)

// Transition is one recorded pin state change.
type Transition struct {
	Pin  uint8
	High bool
}

// Recorder is an in-memory Port. It records every transition in issue order
// and tracks current levels, so tests can check not just the final pin state
// but the exact sequence the driver produced. It also serves as the output
// backend when no hardware is attached.
type Recorder struct {
	mu          sync.Mutex
	configured  map[uint8]Direction
	levels      map[uint8]bool
	transitions []Transition
}

var _ Port = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		configured: make(map[uint8]Direction),
		levels:     make(map[uint8]bool),
	}
}

// Init registers the pin with its direction. Pins start low.
func (r *Recorder) Init(p Pin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configured[p.ID] = p.Dir
	if _, ok := r.levels[p.ID]; !ok {
		r.levels[p.ID] = false
	}
	return nil
}

// Set drives a configured output pin and records the transition.
func (r *Recorder) Set(id uint8, high bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir, ok := r.configured[id]
	if !ok {
		return fmt.Errorf("gpio: pin %d not initialized", id)
	}
	if dir != Output {
		return fmt.Errorf("gpio: pin %d is not an output", id)
	}

	r.levels[id] = high
	r.transitions = append(r.transitions, Transition{Pin: id, High: high})
	return nil
}

// Level returns the current level of a pin.
func (r *Recorder) Level(id uint8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels[id]
}

// Transitions returns a copy of all recorded transitions in issue order.
func (r *Recorder) Transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Transition, len(r.transitions))
	copy(out, r.transitions)
	return out
}

// Reset clears the transition log but keeps pin configuration and levels.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = r.transitions[:0]
}
