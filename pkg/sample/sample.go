package sample

import (
	"log"
	"time"

	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/device"
)

// Sample represents a processed measurement sample with physical values.
type Sample struct {
	Timestamp time.Time
	Distance  float64 // Target distance (cm)
	Weight    float64 // Total weight on both gauges (kg)
	Measuring bool    // Measurement active on the board
	Hold      bool    // Display hold active on the board
}

// Converter is a function type that converts a RawSample channel to a Sample channel.
type Converter func(in <-chan device.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to Sample.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan device.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				s := convertSample(raw, cfg)

				select {
				case out <- s:
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// convertSample converts a RawSample to Sample using configuration.
func convertSample(raw device.RawSample, cfg *config.Config) Sample {
	weight := gaugeWeight(raw.Scale1, cfg) + gaugeWeight(raw.Scale2, cfg)

	return Sample{
		Timestamp: raw.Timestamp,
		Distance:  float64(raw.Distance),
		Weight:    weight,
		Measuring: raw.Measuring,
		Hold:      raw.Hold,
	}
}

// gaugeWeight converts one 12-bit strain-gauge reading to kilograms: counts
// to millivolts against the ADC reference, then millivolts to weight at the
// configured full-scale deflection.
func gaugeWeight(adc uint16, cfg *config.Config) float64 {
	mv := adcToMilliVolts(adc, cfg.Scale.VRefMilliVolts)
	return mv * cfg.Scale.FullScaleKg / cfg.Scale.VRefMilliVolts
}

// adcToMilliVolts converts a 12-bit ADC reading to millivolts.
func adcToMilliVolts(adc uint16, vrefMV float64) float64 {
	return (float64(adc) / 4095.0) * vrefMV
}
