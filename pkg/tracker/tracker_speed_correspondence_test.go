package tracker

import (
	"testing"
	"time"

	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/sample"
	"github.com/stretchr/testify/assert"
)

// TestSpeedCorrespondence verifies that speeds correspond exactly to sample pairs.
// speed[i] = (distance[i+1] - distance[i]) / dt
func TestSpeedCorrespondence(t *testing.T) {
	cfg := config.Default()
	tr := New(cfg)

	now := time.Now()
	dt := 100 * time.Millisecond

	// Create samples with known values
	samples := []sample.Sample{
		{Timestamp: now, Distance: 100.0},
		{Timestamp: now.Add(dt), Distance: 90.0},     // -10 cm in 0.1s = -100 cm/s
		{Timestamp: now.Add(2 * dt), Distance: 80.0}, // -10 cm in 0.1s = -100 cm/s
		{Timestamp: now.Add(3 * dt), Distance: 70.0}, // -10 cm in 0.1s = -100 cm/s
	}

	for _, s := range samples {
		tr.processSample(s)
	}

	// Verify we have n-1 speeds for n samples
	resultSamples := tr.Samples()
	resultSpeeds := tr.Speeds()
	assert.Equal(t, len(resultSamples)-1, len(resultSpeeds), "Should have n-1 speeds for n samples")

	// Verify speed values correspond to sample pairs
	// speed[0] should be (sample[1] - sample[0]) / dt
	expectedSpeed0 := (resultSamples[1].Distance - resultSamples[0].Distance) / resultSamples[1].Timestamp.Sub(resultSamples[0].Timestamp).Seconds()
	assert.InDelta(t, expectedSpeed0, resultSpeeds[0], 0.01, "speed[0] should correspond to (sample[1]-sample[0])/dt")

	// speed[1] should be (sample[2] - sample[1]) / dt
	expectedSpeed1 := (resultSamples[2].Distance - resultSamples[1].Distance) / resultSamples[2].Timestamp.Sub(resultSamples[1].Timestamp).Seconds()
	assert.InDelta(t, expectedSpeed1, resultSpeeds[1], 0.01, "speed[1] should correspond to (sample[2]-sample[1])/dt")
}

// TestTimestampBasedRemoval verifies that samples are removed based on timestamp, not count.
func TestTimestampBasedRemoval(t *testing.T) {
	cfg := config.Default()
	cfg.Measurement.WindowSeconds = 1.0 // 1 second window
	tr := New(cfg)

	now := time.Now()

	// Add samples at different times
	// Sample at t=0s (will be removed when we add sample at t=1.5s)
	s1 := sample.Sample{Timestamp: now, Distance: 100.0}
	tr.processSample(s1)

	// Sample at t=0.5s (will be kept when we add sample at t=1.5s)
	s2 := sample.Sample{Timestamp: now.Add(500 * time.Millisecond), Distance: 90.0}
	tr.processSample(s2)

	// Sample at t=1.5s (outside window from s1's perspective, but within window from s2's)
	s3 := sample.Sample{Timestamp: now.Add(1500 * time.Millisecond), Distance: 80.0}
	tr.processSample(s3)

	// Verify s1 was removed (outside 1s window from s3)
	resultSamples := tr.Samples()
	assert.LessOrEqual(t, len(resultSamples), 2, "Should remove samples outside time window")

	// Verify s2 and s3 are still present
	if len(resultSamples) >= 2 {
		assert.True(t, resultSamples[0].Timestamp.Equal(s2.Timestamp) || resultSamples[0].Timestamp.After(s2.Timestamp), "First sample should be s2 or later")
	}

	// Verify speeds correspond correctly after removal
	resultSpeeds := tr.Speeds()
	assert.Equal(t, len(resultSamples)-1, len(resultSpeeds), "Speeds should still correspond exactly after timestamp-based removal")
}

// TestSpeedCorrespondenceAfterRemoval verifies speeds remain correct after sample removal.
func TestSpeedCorrespondenceAfterRemoval(t *testing.T) {
	cfg := config.Default()
	cfg.Measurement.WindowSeconds = 2.0 // 2 second window
	tr := New(cfg)

	now := time.Now()
	dt := 200 * time.Millisecond

	// Create 5 samples
	for i := 0; i < 5; i++ {
		s := sample.Sample{
			Timestamp: now.Add(time.Duration(i) * dt),
			Distance:  100.0 - float64(i)*10.0,
		}
		tr.processSample(s)
	}

	// Verify initial correspondence: 5 samples = 4 speeds
	samples1 := tr.Samples()
	speeds1 := tr.Speeds()
	assert.Equal(t, 5, len(samples1))
	assert.Equal(t, 4, len(speeds1), "Should have 4 speeds for 5 samples")

	// Add a sample that will cause removal of first 2 samples (outside 2s window)
	// First sample is at t=0, new sample at t=2.5s, so samples before t=0.5s are removed
	s6 := sample.Sample{
		Timestamp: now.Add(2500 * time.Millisecond),
		Distance:  50.0,
	}
	tr.processSample(s6)

	// Verify samples were removed based on timestamp
	samples2 := tr.Samples()
	speeds2 := tr.Speeds()

	// Should have fewer samples now
	assert.Less(t, len(samples2), len(samples1), "Should have removed some samples")

	// Speeds should still correspond exactly: n samples = n-1 speeds
	assert.Equal(t, len(samples2)-1, len(speeds2), "Speeds should still correspond exactly after removal")

	// Verify speed values still correspond to correct sample pairs
	if len(speeds2) > 0 && len(samples2) > 1 {
		expectedSpeed := (samples2[1].Distance - samples2[0].Distance) / samples2[1].Timestamp.Sub(samples2[0].Timestamp).Seconds()
		assert.InDelta(t, expectedSpeed, speeds2[0], 0.01, "First speed should correspond to first sample pair after removal")
	}
}
