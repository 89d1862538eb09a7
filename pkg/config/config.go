package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Display     DisplayConfig     `yaml:"display"`
	Leds        LedsConfig        `yaml:"leds"`
	Bands       BandsConfig       `yaml:"bands"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Scale       ScaleConfig       `yaml:"scale"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial link configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// DisplayConfig describes the multiplexed digit display wiring: four shared
// data-bus pins, one select pin per digit, and the full-sweep refresh period.
type DisplayConfig struct {
	DataPins   []uint8       `yaml:"data_pins"`
	SelectPins []uint8       `yaml:"select_pins"`
	Refresh    time.Duration `yaml:"refresh"`
}

// Digits returns the configured digit count.
func (d DisplayConfig) Digits() int {
	return len(d.SelectPins)
}

// LedsConfig lists the band indicator LED pins, nearest first.
type LedsConfig struct {
	Pins []uint8 `yaml:"pins"`
}

// BandsConfig contains the distance thresholds (in centimeters) between LED
// bands: below Near no LED is lit, then one more LED per crossed threshold.
type BandsConfig struct {
	Near float64 `yaml:"near"`
	Mid  float64 `yaml:"mid"`
	Far  float64 `yaml:"far"`
}

// MeasurementConfig contains measurement parameters.
type MeasurementConfig struct {
	WindowSeconds   float64 `yaml:"window_seconds"`
	HaltThreshold   float64 `yaml:"halt_threshold"`    // Speed magnitude below this counts as halted (cm/s)
	MinHaltDuration float64 `yaml:"min_halt_duration"` // Minimum halt duration in seconds (filters jitter)
	AverageSamples  int     `yaml:"average_samples"`   // Number of samples to average (0 = disabled, default)
	WeighSamples    int     `yaml:"weigh_samples"`     // Strain-gauge samples averaged per weighing
}

// ScaleConfig contains the strain-gauge scale conversion parameters.
type ScaleConfig struct {
	VRefMilliVolts float64 `yaml:"vref_mv"`       // ADC reference in millivolts
	FullScaleKg    float64 `yaml:"full_scale_kg"` // Weight at full ADC deflection
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	StartDistance float64       `yaml:"start_distance"` // Initial target distance (cm)
	ApproachSpeed float64       `yaml:"approach_speed"` // Target approach speed (cm/s)
	HaltDistance  float64       `yaml:"halt_distance"`  // Distance at which the target halts (cm)
	HaltDuration  time.Duration `yaml:"halt_duration"`  // How long the target stays halted
	WeightKg      float64       `yaml:"weight_kg"`      // Simulated weight while halted
	NoiseLevel    float64       `yaml:"noise_level"`    // Distance noise (cm)
	SampleRate    time.Duration `yaml:"sample_rate"`    // Sample rate
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			Baud: 115200,
		},
		Display: DisplayConfig{
			DataPins:   []uint8{20, 21, 22, 23},
			SelectPins: []uint8{19, 18, 9},
			Refresh:    10 * time.Millisecond,
		},
		Leds: LedsConfig{
			Pins: []uint8{11, 12, 13},
		},
		Bands: BandsConfig{
			Near: 10,
			Mid:  20,
			Far:  30,
		},
		Measurement: MeasurementConfig{
			WindowSeconds:   10,
			HaltThreshold:   2.0,
			MinHaltDuration: 1.0, // Filter halts shorter than 1 second
			AverageSamples:  0,   // No averaging by default
			WeighSamples:    50,
		},
		Scale: ScaleConfig{
			VRefMilliVolts: 3300,
			FullScaleKg:    20000,
		},
		Mock: MockConfig{
			StartDistance: 1000,
			ApproachSpeed: 120,
			HaltDistance:  50,
			HaltDuration:  5 * time.Second,
			WeightKg:      12500,
			NoiseLevel:    0.5,
			SampleRate:    100 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if len(c.Display.DataPins) != 4 {
		c.Display.DataPins = def.Display.DataPins
	}
	if len(c.Display.SelectPins) == 0 {
		c.Display.SelectPins = def.Display.SelectPins
	}
	if c.Display.Refresh == 0 {
		c.Display.Refresh = def.Display.Refresh
	}

	if len(c.Leds.Pins) == 0 {
		c.Leds.Pins = def.Leds.Pins
	}

	if c.Bands.Near == 0 {
		c.Bands.Near = def.Bands.Near
	}
	if c.Bands.Mid == 0 {
		c.Bands.Mid = def.Bands.Mid
	}
	if c.Bands.Far == 0 {
		c.Bands.Far = def.Bands.Far
	}

	if c.Measurement.WindowSeconds == 0 {
		c.Measurement.WindowSeconds = def.Measurement.WindowSeconds
	}
	if c.Measurement.HaltThreshold == 0 {
		c.Measurement.HaltThreshold = def.Measurement.HaltThreshold
	}
	if c.Measurement.MinHaltDuration == 0 {
		c.Measurement.MinHaltDuration = def.Measurement.MinHaltDuration
	}
	if c.Measurement.WeighSamples == 0 {
		c.Measurement.WeighSamples = def.Measurement.WeighSamples
	}

	if c.Scale.VRefMilliVolts == 0 {
		c.Scale.VRefMilliVolts = def.Scale.VRefMilliVolts
	}
	if c.Scale.FullScaleKg == 0 {
		c.Scale.FullScaleKg = def.Scale.FullScaleKg
	}

	if c.Mock.StartDistance == 0 {
		c.Mock.StartDistance = def.Mock.StartDistance
	}
	if c.Mock.ApproachSpeed == 0 {
		c.Mock.ApproachSpeed = def.Mock.ApproachSpeed
	}
	if c.Mock.HaltDistance == 0 {
		c.Mock.HaltDistance = def.Mock.HaltDistance
	}
	if c.Mock.HaltDuration == 0 {
		c.Mock.HaltDuration = def.Mock.HaltDuration
	}
	if c.Mock.WeightKg == 0 {
		c.Mock.WeightKg = def.Mock.WeightKg
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
