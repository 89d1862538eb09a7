package display

import (
	"sync"
	"time"

	"github.com/rangescope/rangescope/pkg/bcd"
)

// Refresher repeatedly renders the latest digit sequence so a single-sweep
// multiplexer appears as a steady image. It owns the bus while running: the
// sweep goroutine is the only writer, and value updates go through Set,
// which only swaps the pending sequence.
type Refresher struct {
	mux      *Multiplexer
	interval time.Duration

	mu     sync.Mutex
	digits []uint8
	blank  bool

	stop chan struct{}
	done chan struct{}
}

// NewRefresher wraps a multiplexer in a periodic renderer. The interval is
// the full-sweep period; tens of sweeps per second reads as flicker-free.
func NewRefresher(mux *Multiplexer, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &Refresher{
		mux:      mux,
		interval: interval,
		digits:   make([]uint8, mux.Digits()),
		blank:    true,
	}
}

// Set encodes value as the sequence to keep rendering. If the value does not
// fit the display width, the previous sequence stays in place and the error
// is returned.
func (r *Refresher) Set(value uint32) error {
	digits, err := bcd.Encode(value, r.mux.Digits())
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.digits = digits
	r.blank = false
	r.mu.Unlock()
	return nil
}

// Blank stops driving digits; the next sweeps turn the display off.
func (r *Refresher) Blank() {
	r.mu.Lock()
	r.blank = true
	r.mu.Unlock()
}

// Start launches the sweep goroutine. It is a no-op if already running.
func (r *Refresher) Start() {
	if r.stop != nil {
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.run(r.stop, r.done)
}

// Stop halts the sweep goroutine, blanks the display, and waits for the
// goroutine to exit.
func (r *Refresher) Stop() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop = nil
	r.done = nil
}

func (r *Refresher) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			r.mux.Off()
			return
		case <-ticker.C:
			r.mu.Lock()
			blank := r.blank
			digits := r.digits
			r.mu.Unlock()

			if blank {
				r.mux.Off()
				continue
			}
			// Render errors cannot occur for sequences produced by Set;
			// port errors would repeat every sweep, so a single miss is
			// dropped rather than logged per tick.
			_ = r.mux.Render(digits)
		}
	}
}
