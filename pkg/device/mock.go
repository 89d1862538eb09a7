package device

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rangescope/rangescope/pkg/config"
)

// Gauge scaling used by the simulation, matching the board's strain-gauge
// electronics: full ADC deflection corresponds to 20 tonnes.
const (
	mockFullScaleKg = 20000.0
	mockADCMax      = 4095.0
)

// mockPhase is the state of the simulated target.
type mockPhase int

const (
	phaseApproach mockPhase = iota
	phaseHalted
	phaseRetreat
)

// Mock simulates the range station board for testing and development: a
// target approaches, halts on the scale for a while, then retreats, on
// repeat.
type Mock struct {
	cfg *config.MockConfig

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Board state
	measuring bool
	hold      bool
	barrier   bool

	// Simulation state
	startTime time.Time
	phase     mockPhase
	phaseForN int // Ticks remaining in a time-bounded phase
	distance  float64
	weight    float64 // Current simulated weight on the scale (kg)
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		samples:   make(chan RawSample, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.measuring = true
	m.startTime = time.Now()
	m.phase = phaseApproach
	m.distance = m.cfg.StartDistance
	m.weight = 0

	// Start generating samples
	go m.generateSamples()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// ToggleMeasure toggles the simulated measurement state.
func (m *Mock) ToggleMeasure() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.measuring = !m.measuring
	return nil
}

// ToggleHold toggles the simulated display hold.
func (m *Mock) ToggleHold() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.hold = !m.hold
	return nil
}

// SetBarrier records the simulated barrier state.
func (m *Mock) SetBarrier(open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.barrier = open
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Barrier returns the simulated barrier state.
func (m *Mock) Barrier() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.barrier
}

// generateSamples generates simulated samples.
func (m *Mock) generateSamples() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			sample := m.generateSample()
			select {
			case m.samples <- sample:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample advances the simulated target by one tick and emits the
// corresponding raw line values.
func (m *Mock) generateSample() RawSample {
	m.mu.Lock()

	now := time.Now()
	dt := m.cfg.SampleRate.Seconds()

	if m.measuring {
		switch m.phase {
		case phaseApproach:
			m.distance -= m.cfg.ApproachSpeed * dt
			if m.distance <= m.cfg.HaltDistance {
				m.distance = m.cfg.HaltDistance
				m.phase = phaseHalted
				m.phaseForN = int(m.cfg.HaltDuration.Seconds() / dt)
			}
		case phaseHalted:
			// Weight settles onto the scale while the target is stopped.
			m.weight += (m.cfg.WeightKg - m.weight) * 0.3
			m.phaseForN--
			if m.phaseForN <= 0 {
				m.phase = phaseRetreat
			}
		case phaseRetreat:
			m.distance += m.cfg.ApproachSpeed * dt
			m.weight = math.Max(m.weight-m.cfg.WeightKg*0.2, 0)
			if m.distance >= m.cfg.StartDistance {
				m.distance = m.cfg.StartDistance
				m.phase = phaseApproach
			}
		}
	}

	elapsed := now.Sub(m.startTime)
	noise := (math.Sin(float64(elapsed.Nanoseconds())*0.001) +
		math.Cos(float64(elapsed.Nanoseconds())*0.0013)) *
		m.cfg.NoiseLevel * 0.5

	distance := m.distance + noise
	if distance < 0 {
		distance = 0
	}

	// Split the weight across the two gauges, converted to ADC counts.
	counts := (m.weight / 2) / mockFullScaleKg * mockADCMax
	if counts > mockADCMax {
		counts = mockADCMax
	}

	sample := RawSample{
		Timestamp: now,
		Distance:  uint16(distance),
		Scale1:    uint16(counts),
		Scale2:    uint16(counts),
		Measuring: m.measuring,
		Hold:      m.hold,
	}

	m.mu.Unlock()
	return sample
}
