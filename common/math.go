package common

import (
	"math"
)

// Clamp01 clamps a scalar to the [0, 1] range.
//
// Parameters:
//   - v: the value to clamp
//
// Returns:
//   - float32: v limited to [0, 1]
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
// At t == 0 the result is exactly a.
//
// Parameters:
//   - a: the start value
//   - b: the end value
//   - t: the interpolation factor
//
// Returns:
//   - float32: a + (b - a) * t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// WrapTime wraps a playback time into [0, duration) using a floating point modulo.
// Negative times wrap from the end of the range. A non-positive duration always yields 0.
//
// Parameters:
//   - t: the playback time in seconds
//   - duration: the length of the range in seconds
//
// Returns:
//   - float32: the wrapped time
func WrapTime(t, duration float32) float32 {
	if duration <= 0 {
		return 0
	}
	w := float32(math.Mod(float64(t), float64(duration)))
	if w < 0 {
		w += duration
	}
	// float32 rounding of the modulo result can land exactly on duration
	if w >= duration {
		w = 0
	}
	return w
}
