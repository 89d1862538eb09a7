// Package bcd converts unsigned integers to fixed-width sequences of decimal
// digit values, one digit per element, most significant digit first. This is
// the representation a multiplexed digit display consumes: each element is in
// [0, 9] and maps directly onto a 4-bit data bus.
//
// Conversion is total over its declared domain: a value that does not fit in
// the requested number of digits is reported as an overflow rather than
// silently truncated, and the output is invalid in its entirety.
package bcd

import (
	"errors"
	"fmt"
)

// MaxDigits is the widest supported digit sequence. A uint32 never needs
// more than 10 decimal digits, so wider requests indicate a configuration
// mistake rather than a data condition.
const MaxDigits = 10

var (
	// ErrDigitCount is returned when the requested digit count is outside
	// [1, MaxDigits].
	ErrDigitCount = errors.New("bcd: digit count out of range")
	// ErrOverflow is returned when the value does not fit in the requested
	// number of decimal digits.
	ErrOverflow = errors.New("bcd: value too large for digit count")
)

// Encode converts value into exactly digits decimal digit values, most
// significant first. Values smaller than 10^digits are zero-padded on the
// left; whether leading zeros render as blanks is the display's decision.
//
// On any error the returned slice is nil: a partially extracted sequence is
// never valid.
func Encode(value uint32, digits int) ([]uint8, error) {
	out, err := AppendEncode(nil, value, digits)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendEncode appends the encoding of value to dst and returns the extended
// slice, allowing callers to reuse a fixed buffer across conversions. The
// semantics are otherwise identical to Encode; on error dst is returned
// unmodified alongside the error.
func AppendEncode(dst []uint8, value uint32, digits int) ([]uint8, error) {
	if digits < 1 || digits > MaxDigits {
		return dst, fmt.Errorf("%w: %d (max %d)", ErrDigitCount, digits, MaxDigits)
	}

	start := len(dst)
	for i := 0; i < digits; i++ {
		dst = append(dst, 0)
	}

	// Fill right to left: the least significant undetermined digit goes
	// into the highest unfilled index.
	for i := 0; i < digits; i++ {
		dst[start+digits-i-1] = uint8(value % 10)
		value /= 10
	}

	if value > 0 {
		return dst[:start], fmt.Errorf("%w: %d digits requested", ErrOverflow, digits)
	}

	return dst, nil
}

// Decode interprets digits as a base-10 number, most significant digit
// first. It is the inverse of Encode for any sequence Encode produced.
func Decode(digits []uint8) uint32 {
	var v uint32
	for _, d := range digits {
		v = v*10 + uint32(d)
	}
	return v
}
