// Package device talks to the range station board over its serial link. The
// board streams one CSV line per sample and accepts single-byte commands:
// 'O' toggles measuring, 'H' toggles the display hold, 'A' and 'C' open and
// close the barrier.
package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the board's UART rate.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// Command bytes understood by the board.
const (
	cmdToggleMeasure = 'O'
	cmdToggleHold    = 'H'
	cmdBarrierOpen   = 'A'
	cmdBarrierClose  = 'C'
)

// RawSample represents one raw measurement line from the board.
type RawSample struct {
	Timestamp time.Time
	Distance  uint16 // Measured distance in centimeters
	Scale1    uint16 // 12-bit ADC reading of strain gauge 1 (0-4095)
	Scale2    uint16 // 12-bit ADC reading of strain gauge 2 (0-4095)
	Measuring bool   // Measurement active on the board
	Hold      bool   // Display hold active on the board
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the board.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and
// buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		samples:   make(chan RawSample, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading samples in a goroutine
	go d.readSamples()

	return nil
}

// Close closes the connection and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Close serial port
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Close samples channel
	close(d.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// ToggleMeasure toggles measurement on the board.
func (d *Serial) ToggleMeasure() error {
	return d.sendCommand(cmdToggleMeasure)
}

// ToggleHold toggles the board's display hold.
func (d *Serial) ToggleHold() error {
	return d.sendCommand(cmdToggleHold)
}

// SetBarrier opens or closes the barrier.
func (d *Serial) SetBarrier(open bool) error {
	if open {
		return d.sendCommand(cmdBarrierOpen)
	}
	return d.sendCommand(cmdBarrierClose)
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Serial) sendCommand(cmd byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	_, err := d.conn.Write([]byte{cmd, '\n'})
	if err != nil {
		return fmt.Errorf("failed to send command %q: %w", cmd, err)
	}

	return nil
}

// readSamples reads lines from the serial port and parses them into RawSample.
func (d *Serial) readSamples() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readSamples: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil {
					if err != io.EOF {
						log.Printf("Error reading from serial port: %v", err)
					}
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			sample, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			// Send sample to channel (non-blocking)
			select {
			case d.samples <- sample:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Samples channel full, dropping sample")
			}
		}
	}
}

// parseLine parses a line from the board into a RawSample.
// Format: unix_micros,distance_cm,scale1,scale2,MH
// Example: 1234567890123,245,2048,1024,10
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 5 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 5 comma-separated values, got %d", len(parts))
	}

	// Parse timestamp (unix microseconds)
	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	timestamp := time.Unix(0, timestampMicros*1000) // Convert microseconds to nanoseconds

	// Parse distance in centimeters
	distance, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid distance: %w", err)
	}

	// Parse strain gauge readings (12-bit ADC)
	scale1, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid scale1 reading: %w", err)
	}
	if scale1 > 4095 {
		return RawSample{}, fmt.Errorf("scale1 reading out of range: %d (max 4095)", scale1)
	}

	scale2, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid scale2 reading: %w", err)
	}
	if scale2 > 4095 {
		return RawSample{}, fmt.Errorf("scale2 reading out of range: %d (max 4095)", scale2)
	}

	// Parse flags (2 digits: measuring, hold)
	flags := parts[4]
	if len(flags) != 2 {
		return RawSample{}, fmt.Errorf("invalid flags: expected 2 digits, got %d", len(flags))
	}

	return RawSample{
		Timestamp: timestamp,
		Distance:  uint16(distance),
		Scale1:    uint16(scale1),
		Scale2:    uint16(scale2),
		Measuring: flags[0] == '1',
		Hold:      flags[1] == '1',
	}, nil
}
