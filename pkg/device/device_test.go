package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RawSample
		wantErr bool
	}{
		{
			name: "valid line - measuring",
			line: "1234567890123,245,2048,1024,10",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Distance:  245,
				Scale1:    2048,
				Scale2:    1024,
				Measuring: true,
				Hold:      false,
			},
			wantErr: false,
		},
		{
			name: "valid line - measuring with hold",
			line: "1234567890123,37,0,0,11",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Distance:  37,
				Scale1:    0,
				Scale2:    0,
				Measuring: true,
				Hold:      true,
			},
			wantErr: false,
		},
		{
			name: "valid line - idle",
			line: "1234567890123,0,0,0,00",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Distance:  0,
				Scale1:    0,
				Scale2:    0,
				Measuring: false,
				Hold:      false,
			},
			wantErr: false,
		},
		{
			name: "valid line - max ADC values",
			line: "1234567890123,1000,4095,4095,10",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Distance:  1000,
				Scale1:    4095,
				Scale2:    4095,
				Measuring: true,
				Hold:      false,
			},
			wantErr: false,
		},
		{
			name:    "invalid - wrong number of fields",
			line:    "1234567890123,245,2048,1024",
			wantErr: true,
		},
		{
			name:    "invalid - too many fields",
			line:    "1234567890123,245,2048,1024,10,extra",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric timestamp",
			line:    "abc,245,2048,1024,10",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric distance",
			line:    "1234567890123,abc,2048,1024,10",
			wantErr: true,
		},
		{
			name:    "invalid - scale1 out of range",
			line:    "1234567890123,245,5000,1024,10",
			wantErr: true,
		},
		{
			name:    "invalid - scale2 out of range",
			line:    "1234567890123,245,2048,5000,10",
			wantErr: true,
		},
		{
			name:    "invalid - flags wrong length",
			line:    "1234567890123,245,2048,1024,1",
			wantErr: true,
		},
		{
			name:    "invalid - flags wrong length 2",
			line:    "1234567890123,245,2048,1024,101",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want.Timestamp.UnixNano(), got.Timestamp.UnixNano())
				assert.Equal(t, tt.want.Distance, got.Distance)
				assert.Equal(t, tt.want.Scale1, got.Scale1)
				assert.Equal(t, tt.want.Scale2, got.Scale2)
				assert.Equal(t, tt.want.Measuring, got.Measuring)
				assert.Equal(t, tt.want.Hold, got.Hold)
			}
		})
	}
}

func TestNew(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 100, dev.bufSize)
	assert.NotNil(t, dev.samples)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.NotNil(t, dev)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_CommandsRequireConnection(t *testing.T) {
	dev := New("COM3", 115200, 100)

	assert.Error(t, dev.ToggleMeasure())
	assert.Error(t, dev.ToggleHold())
	assert.Error(t, dev.SetBarrier(true))
}

func TestSerial_CloseWithoutConnect(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NoError(t, dev.Close())
}
