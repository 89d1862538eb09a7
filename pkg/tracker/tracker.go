package tracker

import (
	"math"
	"sync"
	"time"

	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/sample"
)

var _ MotionTracker = (*Tracker)(nil)

// Halt represents a detected halt span: the target stopped in front of the
// sensor long enough to be weighed.
type Halt struct {
	StartIndex int       // Start sample index in buffer
	EndIndex   int       // End sample index in buffer (updated as halt continues)
	StartTime  time.Time // Start timestamp
	EndTime    time.Time // End timestamp (updated as halt continues)
	Speed      float64   // Last speed value while halted (cm/s, for display)
	Weight     float64   // Weight averaged over the halt span (kg)
}

// MotionTracker processes samples, maintains buffers, and detects halts.
type MotionTracker interface {
	ProcessSamples(input <-chan sample.Sample)
	// Samples returns the current window, first sample first.
	Samples() []sample.Sample
	// Speeds returns the per-pair derivatives, n-1 speeds for n samples.
	Speeds() []float64
	// Halts returns the detected halts within the window.
	Halts() []Halt
	// MaxSpeed returns the largest speed magnitude within the window (cm/s).
	MaxSpeed() float64
	// OnUpdate registers a callback invoked after each processed sample.
	OnUpdate(func(samples []sample.Sample, speeds []float64, halts []Halt))
}

// Tracker implements MotionTracker interface.
// Internally uses FIFO buffers (can be implemented as ring buffers for efficiency).
// Externally exposes ordered slices (first sample/speed first, latest last).
type Tracker struct {
	cfg *config.Config

	// Buffers
	// Both samples and speeds are FIFO buffers that maintain order:
	// - First sample/speed is at index 0 (oldest)
	// - Latest sample/speed is at the end (newest)
	// Removal is based on timestamp (time window), not number of samples.
	//
	// Speeds correspond exactly to sample pairs:
	// - speed[i] = (distance[i+1] - distance[i]) / dt
	// - If we have n samples, we have n-1 speeds
	// - speed[0] corresponds to the change from sample[0] to sample[1]
	// - etc.
	// Approaching targets produce negative speeds.
	samples []sample.Sample // FIFO buffer of raw samples (ordered first to last, removed by timestamp)
	speeds  []float64       // FIFO buffer of speed values (n-1 speeds for n samples, exactly corresponds to sample pairs)
	halts   []Halt          // Detected halts

	// Thread safety
	mu sync.RWMutex

	// Update callbacks
	// Callbacks receive current samples, speeds, and halts directly
	callbacks []func(samples []sample.Sample, speeds []float64, halts []Halt)
	cbMu      sync.RWMutex

	// Configuration
	windowDuration  time.Duration
	haltThreshold   float64
	minHaltDuration time.Duration

	// Shutdown control
	shutdown bool // Set to true when input channel closes, prevents further callbacks
}

// New creates a new MotionTracker instance.
// Returns concrete type (*Tracker) following Go best practices.
func New(cfg *config.Config) *Tracker {
	t := &Tracker{
		cfg:             cfg,
		samples:         make([]sample.Sample, 0),
		speeds:          make([]float64, 0),
		halts:           make([]Halt, 0),
		callbacks:       make([]func(samples []sample.Sample, speeds []float64, halts []Halt), 0),
		windowDuration:  time.Duration(cfg.Measurement.WindowSeconds * float64(time.Second)),
		haltThreshold:   cfg.Measurement.HaltThreshold,
		minHaltDuration: time.Duration(cfg.Measurement.MinHaltDuration * float64(time.Second)),
		shutdown:        false,
	}

	return t
}

// ProcessSamples processes samples from the input channel in a goroutine.
// When the input channel closes, it sets shutdown flag to prevent further callbacks.
func (t *Tracker) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		t.processSample(s)
	}
	// Channel closed - mark as shutdown to prevent further callbacks
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

// processSample adds a sample to the buffer, updates speeds, and detects halts.
func (t *Tracker) processSample(s sample.Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Add sample to FIFO buffer
	t.samples = append(t.samples, s)

	// Remove samples outside time window (based on timestamp, not count)
	// Calculate cutoff time: samples before this time are outside the window
	cutoffTime := s.Timestamp.Add(-t.windowDuration)
	cutoffIndex := 0
	for i, smp := range t.samples {
		if smp.Timestamp.After(cutoffTime) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		// Remove samples before cutoffIndex (they're outside the time window)
		t.samples = t.samples[cutoffIndex:]

		// Remove corresponding speeds to keep exact correspondence
		// speed[i] = (distance[i+1] - distance[i]) / dt
		// If we remove samples[0..cutoffIndex-1], we need to remove speeds[0..cutoffIndex-1]
		// because those speeds correspond to pairs involving removed samples
		if cutoffIndex <= len(t.speeds) {
			t.speeds = t.speeds[cutoffIndex:]
		} else {
			// Edge case: if we removed more samples than we have speeds, clear all
			// This can happen if we had very few samples and removed most/all of them
			t.speeds = t.speeds[:0]
		}
		// Adjust halt indices
		for i := range t.halts {
			t.halts[i].StartIndex -= cutoffIndex
			t.halts[i].EndIndex -= cutoffIndex
		}
		// Remove halts with invalid indices
		validHalts := make([]Halt, 0)
		for _, halt := range t.halts {
			if halt.StartIndex >= 0 && halt.EndIndex >= 0 {
				validHalts = append(validHalts, halt)
			}
		}
		t.halts = validHalts
	}

	// Update speeds (need at least 2 samples)
	// Calculate speed for the new sample pair: (sample[n-1], sample[n])
	// speed[i] corresponds exactly to the change from sample[i] to sample[i+1]
	if len(t.samples) >= 2 {
		lastIdx := len(t.samples) - 1
		prev := t.samples[lastIdx-1] // sample[i]
		curr := t.samples[lastIdx]   // sample[i+1]

		dt := curr.Timestamp.Sub(prev.Timestamp).Seconds()
		if dt > 0 {
			// Calculate speed: (distance[i+1] - distance[i]) / dt
			speed := (curr.Distance - prev.Distance) / dt
			t.speeds = append(t.speeds, speed)

			// Ensure exact correspondence: n samples = n-1 speeds
			// If somehow we have more speeds than expected, remove oldest
			if len(t.speeds) > len(t.samples)-1 {
				t.speeds = t.speeds[1:]
			}
		}
	}

	// Detect and update halts
	t.updateHalts()

	// Check shutdown flag and prepare for callback (must do this while holding lock)
	shouldNotify := !t.shutdown

	// Release lock before calling notifyCallbacks (which needs RLock)
	// This prevents deadlock: we can't acquire RLock while holding Lock
	t.mu.Unlock()

	if shouldNotify {
		t.notifyCallbacks()
	}

	// Re-acquire lock for defer (though we're about to return anyway)
	t.mu.Lock()
}

// updateHalts detects and updates halts based on speed values. A halt is a
// span where the target sits still (speed magnitude below the threshold)
// with something on the scale.
func (t *Tracker) updateHalts() {
	if len(t.speeds) == 0 {
		return
	}

	lastSpeedIdx := len(t.speeds) - 1
	lastSpeed := t.speeds[lastSpeedIdx]
	lastSampleIdx := len(t.samples) - 1

	// Check if the target is halted (speed magnitude below threshold)
	isHalted := math.Abs(lastSpeed) < t.haltThreshold

	// Update existing active halts or create new ones
	if isHalted {
		// Find active halt (last halt that might still be active)
		activeHaltIdx := -1
		for i := len(t.halts) - 1; i >= 0; i-- {
			if t.halts[i].EndIndex == lastSampleIdx-1 {
				// This halt was just extended, check if it's still active
				activeHaltIdx = i
				break
			}
		}

		if activeHaltIdx >= 0 {
			// Extend existing halt
			t.halts[activeHaltIdx].EndIndex = lastSampleIdx
			t.halts[activeHaltIdx].EndTime = t.samples[lastSampleIdx].Timestamp
			t.halts[activeHaltIdx].Speed = lastSpeed
			t.halts[activeHaltIdx].Weight = t.averageWeight(t.halts[activeHaltIdx].StartIndex, lastSampleIdx)
		} else {
			// Check if we should start a new halt
			// Only start if previous speed was above threshold (or this is first)
			shouldStart := true
			if lastSpeedIdx > 0 {
				prevSpeed := t.speeds[lastSpeedIdx-1]
				if math.Abs(prevSpeed) < t.haltThreshold {
					// Previous was also below threshold, might be continuation
					// Check if there's a gap (motion phase) between last halt and now
					shouldStart = false
					if len(t.halts) > 0 {
						lastHalt := t.halts[len(t.halts)-1]
						// If there's a gap, start new halt
						if lastSampleIdx-1 > lastHalt.EndIndex+1 {
							shouldStart = true
						}
					}
				}
			}

			if shouldStart {
				// Start new halt
				startIdx := lastSampleIdx - 1
				if startIdx < 0 {
					startIdx = 0
				}
				newHalt := Halt{
					StartIndex: startIdx,
					EndIndex:   lastSampleIdx,
					StartTime:  t.samples[startIdx].Timestamp,
					EndTime:    t.samples[lastSampleIdx].Timestamp,
					Speed:      lastSpeed,
					Weight:     t.averageWeight(startIdx, lastSampleIdx),
				}
				t.halts = append(t.halts, newHalt)
			} else if len(t.halts) > 0 {
				// Extend the last halt if it was close
				lastHaltIdx := len(t.halts) - 1
				lastHalt := &t.halts[lastHaltIdx]
				if lastSampleIdx <= lastHalt.EndIndex+2 {
					// Close enough, extend it
					lastHalt.EndIndex = lastSampleIdx
					lastHalt.EndTime = t.samples[lastSampleIdx].Timestamp
					lastHalt.Speed = lastSpeed
					lastHalt.Weight = t.averageWeight(lastHalt.StartIndex, lastSampleIdx)
				}
			}
		}
	}

	// Remove halts that fell out of the window, and ended halts too short to
	// be a real stop. A halt still growing at the newest sample is kept so it
	// can reach the minimum duration; Halts() hides it until it does.
	validHalts := make([]Halt, 0, len(t.halts))
	for _, halt := range t.halts {
		if halt.StartIndex < 0 || halt.StartIndex >= len(t.samples) {
			continue
		}
		ended := halt.EndIndex < lastSampleIdx
		if ended && halt.EndTime.Sub(halt.StartTime) < t.minHaltDuration {
			continue
		}
		validHalts = append(validHalts, halt)
	}
	t.halts = validHalts
}

// averageWeight averages Sample.Weight over an index span. Call with t.mu held.
func (t *Tracker) averageWeight(startIdx, endIdx int) float64 {
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx >= len(t.samples) {
		endIdx = len(t.samples) - 1
	}
	if endIdx < startIdx {
		return 0
	}

	var sum float64
	for i := startIdx; i <= endIdx; i++ {
		sum += t.samples[i].Weight
	}
	return sum / float64(endIdx-startIdx+1)
}

// Samples returns a copy of the current samples buffer.
func (t *Tracker) Samples() []sample.Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]sample.Sample, len(t.samples))
	copy(result, t.samples)
	return result
}

// Speeds returns a copy of the current speeds buffer.
func (t *Tracker) Speeds() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]float64, len(t.speeds))
	copy(result, t.speeds)
	return result
}

// Halts returns a copy of the halts that have lasted at least the minimum
// duration. A stop still shorter than that is tracked internally but not
// reported yet.
func (t *Tracker) Halts() []Halt {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.matureHalts()
}

// matureHalts copies the halts meeting the minimum duration. Call with t.mu held.
func (t *Tracker) matureHalts() []Halt {
	result := make([]Halt, 0, len(t.halts))
	for _, h := range t.halts {
		if h.EndTime.Sub(h.StartTime) >= t.minHaltDuration {
			result = append(result, h)
		}
	}
	return result
}

// MaxSpeed returns the largest speed magnitude within the current window.
func (t *Tracker) MaxSpeed() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var max float64
	for _, v := range t.speeds {
		if abs := math.Abs(v); abs > max {
			max = abs
		}
	}
	return max
}

// OnUpdate registers a callback function that will be called when samples are updated.
// The callback receives current samples, speeds, and halts directly.
// The callback should copy data quickly and return as fast as possible.
func (t *Tracker) OnUpdate(callback func(samples []sample.Sample, speeds []float64, halts []Halt)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new measurement chain.
func (t *Tracker) ResetShutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with current data.
// Makes copies of data while holding read lock, then calls callbacks without lock.
func (t *Tracker) notifyCallbacks() {
	// Copy data while holding read lock
	t.mu.RLock()
	samplesCopy := make([]sample.Sample, len(t.samples))
	copy(samplesCopy, t.samples)
	speedsCopy := make([]float64, len(t.speeds))
	copy(speedsCopy, t.speeds)
	haltsCopy := t.matureHalts()
	t.mu.RUnlock()

	// Get callbacks (need read lock for callbacks slice)
	t.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample, speeds []float64, halts []Halt), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	// Invoke callbacks without holding any locks
	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, speedsCopy, haltsCopy)
		}
	}
}
