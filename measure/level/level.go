// Package level computes block statistics of rendered audio: peak, RMS, DC
// offset, crest factor and clipping counts.
package level

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one channel.
type Stats struct {
	Samples int
	// Peak is the largest absolute sample value.
	Peak float64
	RMS  float64
	// DC is the mean sample value.
	DC float64
	// StdDev is the population standard deviation, RMS without the DC part.
	StdDev float64
	// Crest is Peak/RMS, zero for silence.
	Crest float64
	// Clipped counts samples at or beyond full scale.
	Clipped int
}

// PeakDB returns the peak level in dBFS.
func (s Stats) PeakDB() float64 { return ToDB(s.Peak) }

// RMSDB returns the RMS level in dBFS.
func (s Stats) RMSDB() float64 { return ToDB(s.RMS) }

// CrestDB returns the crest factor in dB.
func (s Stats) CrestDB() float64 { return ToDB(s.Crest) }

// Analyze computes Stats for x. An empty slice yields the zero value.
func Analyze(x []float64) Stats {
	if len(x) == 0 {
		return Stats{}
	}

	n := float64(len(x))

	s := Stats{
		Samples: len(x),
		Peak:    math.Max(math.Abs(floats.Max(x)), math.Abs(floats.Min(x))),
		RMS:     math.Sqrt(floats.Dot(x, x) / n),
		DC:      stat.Mean(x, nil),
		StdDev:  stat.PopStdDev(x, nil),
		Clipped: CountClipped(x, 1),
	}

	if s.RMS > 0 {
		s.Crest = s.Peak / s.RMS
	}

	return s
}

// CountClipped returns how many samples have a magnitude of at least threshold.
func CountClipped(x []float64, threshold float64) int {
	count := 0

	for _, v := range x {
		if math.Abs(v) >= threshold {
			count++
		}
	}

	return count
}

// ToDB converts a linear amplitude to decibels. Non-positive values map to -Inf.
func ToDB(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return math.Inf(-1)
	}

	return 20 * log10(v)
}

// FromDB converts decibels to a linear amplitude.
func FromDB(db float64) float64 {
	return math.Pow(10, db/20)
}
