// Package testutil holds deterministic test signals and tolerance checks
// shared by the DSP and scheduler tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// Sine returns length samples of amplitude*sin(2*pi*freqHz*n/sampleRate).
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// Noise returns uniform white noise in [-amplitude, amplitude). The same seed
// always yields the same samples.
func Noise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse returns a signal that is zero except for amplitude at pos.
func Impulse(length, pos int, amplitude float64) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = amplitude
	}

	return out
}

// Const returns length copies of value.
func Const(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}
