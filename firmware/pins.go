package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1  // Scale ADC read interval in milliseconds
	NUM_SAMPLES        = 50 // Number of scale samples averaged per output line

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Ultrasonic ranger
	PIN_TRIGGER  = machine.Pin(5)
	PIN_ECHO     = machine.Pin(4)
	ECHO_TIMEOUT = 30000 // Echo wait limit in microseconds (~5m round trip)
	US_PER_CM    = 58    // Round-trip sound time per centimeter

	// Display bus: four shared data pins, one select pin per digit
	PIN_DATA0   = 20
	PIN_DATA1   = 21
	PIN_DATA2   = 22
	PIN_DATA3   = 23
	PIN_SELECT0 = 19 // Most significant digit
	PIN_SELECT1 = 18
	PIN_SELECT2 = 9
	REFRESH_MS  = 3 // Full display sweep period in milliseconds

	// Band indicator LEDs, nearest band first
	PIN_LED0 = 11
	PIN_LED1 = 12
	PIN_LED2 = 13

	// Distance band thresholds in centimeters
	BAND_NEAR = 10
	BAND_MID  = 20
	BAND_FAR  = 30

	// Weighing area barrier
	PIN_BARRIER = machine.Pin(26)

	// Scale strain-gauge ADC pins
	PIN_SCALE1_ADC = machine.Pin(34)
	PIN_SCALE2_ADC = machine.Pin(35)

	// Serial configuration
	// Format: "unix_micros,distance,scale1,scale2,MH\n"
	// Example: "1234567890123456,400,4095,4095,10\n" = ~35 bytes max per line
	// 20 outputs/sec * 35 bytes/line = 700 bytes/sec; 115200 8N1 gives
	// 11,520 bytes/sec, plenty of headroom
	UART_BAUD_RATE = 115200
)
