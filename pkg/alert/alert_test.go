package alert

import (
	"testing"

	"github.com/rangescope/rangescope/pkg/config"
	"github.com/rangescope/rangescope/pkg/gpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cfg := config.Default() // Near 10, Mid 20, Far 30

	tests := []struct {
		name     string
		distance float64
		want     Band
	}{
		{
			name:     "touching the sensor",
			distance: 0,
			want:     BandOff,
		},
		{
			name:     "just below near threshold",
			distance: 9.9,
			want:     BandOff,
		},
		{
			name:     "at near threshold",
			distance: 10,
			want:     BandNear,
		},
		{
			name:     "between near and mid",
			distance: 15,
			want:     BandNear,
		},
		{
			name:     "at mid threshold",
			distance: 20,
			want:     BandMid,
		},
		{
			name:     "between mid and far",
			distance: 25,
			want:     BandMid,
		},
		{
			name:     "at far threshold",
			distance: 30,
			want:     BandFar,
		},
		{
			name:     "well beyond far",
			distance: 400,
			want:     BandFar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.distance, cfg)
			assert.Equal(t, tt.want, got, "Classify(%f) = %v, want %v", tt.distance, got, tt.want)
		})
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 0, Level(BandOff))
	assert.Equal(t, 1, Level(BandNear))
	assert.Equal(t, 2, Level(BandMid))
	assert.Equal(t, 3, Level(BandFar))
}

func TestApply(t *testing.T) {
	cfg := config.Default()
	pins := cfg.Leds.Pins

	rec := gpio.NewRecorder()
	for _, id := range pins {
		require.NoError(t, rec.Init(gpio.Out(id)))
	}

	tests := []struct {
		name string
		band Band
		want []bool // Level per LED pin, nearest first
	}{
		{
			name: "off lights nothing",
			band: BandOff,
			want: []bool{false, false, false},
		},
		{
			name: "near lights first LED",
			band: BandNear,
			want: []bool{true, false, false},
		},
		{
			name: "mid lights two LEDs",
			band: BandMid,
			want: []bool{true, true, false},
		},
		{
			name: "far lights all LEDs",
			band: BandFar,
			want: []bool{true, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Apply(rec, pins, tt.band))
			for i, id := range pins {
				assert.Equal(t, tt.want[i], rec.Level(id), "LED %d level", id)
			}
		})
	}
}

func TestApply_UninitializedPin(t *testing.T) {
	rec := gpio.NewRecorder()
	err := Apply(rec, []uint8{11, 12, 13}, BandFar)
	assert.Error(t, err)
}

func TestClassifySpeed(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		want  SpeedBand
	}{
		{
			name:  "standing still",
			speed: 0,
			want:  SpeedOk,
		},
		{
			name:  "slow approach",
			speed: -100,
			want:  SpeedOk,
		},
		{
			name:  "caution approach",
			speed: -200,
			want:  SpeedCaution,
		},
		{
			name:  "danger approach",
			speed: -350,
			want:  SpeedDanger,
		},
		{
			name:  "retreating fast",
			speed: 350,
			want:  SpeedDanger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySpeed(tt.speed)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.Message())
		})
	}
}

func TestBandString(t *testing.T) {
	assert.Equal(t, "off", BandOff.String())
	assert.Equal(t, "near", BandNear.String())
	assert.Equal(t, "mid", BandMid.String())
	assert.Equal(t, "far", BandFar.String())
	assert.Equal(t, "unknown", Band(42).String())
}
