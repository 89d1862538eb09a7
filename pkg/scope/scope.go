package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/sample"
	"github.com/rangescope/rangescope/pkg/tracker"
)

// ScopeWidget is a custom Fyne widget that displays oscilloscope-style
// distance and speed graphs with halt markers.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	samples []sample.Sample
	speeds  []float64
	halts   []tracker.Halt
	weight  float64

	// Display buffers (reused for downsampling)
	displaySamples []sample.Sample
	displaySpeeds  []float64

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		samples:          make([]sample.Sample, 0),
		speeds:           make([]float64, 0),
		halts:            make([]tracker.Halt, 0),
		weight:           0.0,
		displaySamples:   make([]sample.Sample, 0, 1000),
		displaySpeeds:    make([]float64, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with new measurement data.
// This should be called from the measurement callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, speeds []float64, halts []tracker.Halt, weight float64) {
	s.mu.Lock()

	// Downsample for display (reuse buffers)
	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.maxDisplayPoints)
	s.displaySpeeds = sample.DownsampleDerivatives(s.displaySpeeds, speeds, s.maxDisplayPoints)

	// Store full data
	s.samples = samples
	s.speeds = speeds
	s.halts = halts
	s.weight = weight

	// Calculate auto-scaling
	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateAutoScale calculates Y-axis range from current data.
func (s *ScopeWidget) updateAutoScale() {
	if len(s.displaySamples) == 0 {
		s.yMin = 0.0
		s.yMax = 1.0
		s.xMin = time.Now()
		s.xMax = time.Now().Add(10 * time.Second)
		return
	}

	// Find min/max for distances
	s.yMin = s.displaySamples[0].Distance
	s.yMax = s.displaySamples[0].Distance
	for _, smp := range s.displaySamples {
		if smp.Distance < s.yMin {
			s.yMin = smp.Distance
		}
		if smp.Distance > s.yMax {
			s.yMax = smp.Distance
		}
	}

	// Find min/max for speeds
	for _, speed := range s.displaySpeeds {
		if speed < s.yMin {
			s.yMin = speed
		}
		if speed > s.yMax {
			s.yMax = speed
		}
	}

	// Add 10% margin
	span := s.yMax - s.yMin
	if span == 0 {
		span = 1.0
	}
	margin := span * 0.1
	s.yMin -= margin
	s.yMax += margin

	// Time range
	if len(s.displaySamples) > 0 {
		s.xMin = s.displaySamples[0].Timestamp
		s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
		// Ensure minimum window
		if s.xMax.Sub(s.xMin) < time.Duration(s.cfg.Measurement.WindowSeconds)*time.Second {
			s.xMax = s.xMin.Add(time.Duration(s.cfg.Measurement.WindowSeconds) * time.Second)
		}
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:    s,
		grid:     grid,
		objects:  []fyne.CanvasObject{grid},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
