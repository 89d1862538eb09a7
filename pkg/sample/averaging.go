package sample

import (
	"log"
	"time"

	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/device"
)

// NewAveragingConverter creates a converter that averages up to windowSize
// consecutive RawSamples before converting them. This reduces ranging noise
// and strain-gauge jitter in the measurements.
func NewAveragingConverter(cfg *config.Config, windowSize int, bufSize int) Converter {
	if windowSize <= 0 {
		windowSize = 1 // No averaging if invalid
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan device.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var buffer []device.RawSample
			ticker := time.NewTicker(100 * time.Millisecond) // Output rate
			defer ticker.Stop()

			for {
				select {
				case raw, ok := <-in:
					if !ok {
						// Input closed, output any remaining samples
						if len(buffer) > 0 {
							avg := averageAndConvertSamples(buffer, cfg)
							select {
							case out <- avg:
							default:
							}
						}
						return
					}

					buffer = append(buffer, raw)
					if len(buffer) > windowSize {
						buffer = buffer[1:] // Remove oldest
					}

				case <-ticker.C:
					// Output averaged sample periodically
					if len(buffer) > 0 {
						avg := averageAndConvertSamples(buffer, cfg)
						select {
						case out <- avg:
						default:
							log.Printf("Averaging converter output channel full")
						}
					}
				}
			}
		}()

		return out
	}
}

// NewAveragingConverterForSamples creates a converter that averages
// already-converted Samples. Useful for smoothing the curves fed to the
// scope display without touching the raw pipeline.
func NewAveragingConverterForSamples(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var buffer []Sample
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case s, ok := <-in:
					if !ok {
						if len(buffer) > 0 {
							select {
							case out <- averageConvertedSamples(buffer):
							default:
							}
						}
						return
					}

					buffer = append(buffer, s)
					if len(buffer) > windowSize {
						buffer = buffer[1:]
					}

				case <-ticker.C:
					if len(buffer) > 0 {
						select {
						case out <- averageConvertedSamples(buffer):
						default:
							log.Printf("Sample averaging converter output channel full")
						}
					}
				}
			}
		}()

		return out
	}
}

// averageAndConvertSamples averages the raw readings and converts the result.
// The most recent sample supplies the timestamp and board flags.
func averageAndConvertSamples(samples []device.RawSample, cfg *config.Config) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sumDistance, sumScale1, sumScale2 uint32
	lastSample := samples[len(samples)-1]

	for _, s := range samples {
		sumDistance += uint32(s.Distance)
		sumScale1 += uint32(s.Scale1)
		sumScale2 += uint32(s.Scale2)
	}

	n := float64(len(samples))
	avgRaw := device.RawSample{
		Timestamp: lastSample.Timestamp,
		Distance:  uint16((float64(sumDistance) / n) + 0.5), // Round to nearest
		Scale1:    uint16((float64(sumScale1) / n) + 0.5),
		Scale2:    uint16((float64(sumScale2) / n) + 0.5),
		Measuring: lastSample.Measuring,
		Hold:      lastSample.Hold,
	}

	return convertSample(avgRaw, cfg)
}

// averageConvertedSamples averages physical values directly. Timestamp and
// board flags come from the most recent sample.
func averageConvertedSamples(samples []Sample) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sumDistance, sumWeight float64
	last := samples[len(samples)-1]

	for _, s := range samples {
		sumDistance += s.Distance
		sumWeight += s.Weight
	}

	n := float64(len(samples))
	return Sample{
		Timestamp: last.Timestamp,
		Distance:  sumDistance / n,
		Weight:    sumWeight / n,
		Measuring: last.Measuring,
		Hold:      last.Hold,
	}
}
