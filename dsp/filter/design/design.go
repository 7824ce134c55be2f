package design

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// MaxCutoffRatio is the highest cutoff, as a fraction of the sample rate,
// that is designed as a real filter. Anything at or above it is bypassed.
const MaxCutoffRatio = 0.45

// Kind selects the response designed by [Configure].
type Kind int

const (
	// KindUnity is the exact bypass section.
	KindUnity Kind = iota
	// KindLowpass is the RBJ cookbook second-order lowpass.
	KindLowpass
	// KindHighpass is the RBJ cookbook second-order highpass.
	KindHighpass
)

func (k Kind) String() string {
	switch k {
	case KindUnity:
		return "unity"
	case KindLowpass:
		return "lowpass"
	case KindHighpass:
		return "highpass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Configure designs one section of the given kind.
//
// A cutoff outside (0, MaxCutoffRatio*sampleRate), an invalid sample rate,
// an unknown kind or a section that would not be stable yields
// [biquad.Unity]. A non-positive or non-finite q
// falls back to 1/sqrt(2).
func Configure(kind Kind, sampleRate, cutoffHz, q float64) biquad.Coefficients {
	switch kind {
	case KindLowpass:
		return Lowpass(cutoffHz, q, sampleRate)
	case KindHighpass:
		return Highpass(cutoffHz, q, sampleRate)
	default:
		return biquad.Unity()
	}
}

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Unity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Unity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	if freq <= 0 || freq >= MaxCutoffRatio*sampleRate || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Unity()
	}

	c := biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}

	// Cutoffs a hair above 0 Hz can round a pole onto the unit circle.
	if !c.Stable() {
		return biquad.Unity()
	}

	return c
}
