package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/delay"
)

const (
	// DefaultDelayCapacity is the static line size: 500 ms at 48 kHz.
	DefaultDelayCapacity = 24000
	// MaxDelayTimeMs caps the delay time.
	MaxDelayTimeMs = 500.0

	maxDelayFeedback = 0.99
)

// DelayOption mutates construction-time parameters.
type DelayOption func(*delayConfig) error

type delayConfig struct {
	capacity int
}

// WithDelayCapacity overrides the static line capacity in samples.
func WithDelayCapacity(samples int) DelayOption {
	return func(cfg *delayConfig) error {
		if samples <= 0 {
			return fmt.Errorf("delay capacity must be > 0: %d", samples)
		}

		cfg.capacity = samples

		return nil
	}
}

// Delay is a single-tap feedback delay with dry/wet mix. The output is
// clamped to [-1, 1].
type Delay struct {
	sampleRate float64
	timeMs     float64
	mix        float64
	feedback   float64

	line *delay.Line
}

// NewDelay creates a delay with the given time in milliseconds, wet mix and
// feedback. Out-of-range time, mix and feedback are clamped; only the sample
// rate and capacity can make construction fail.
func NewDelay(sampleRate, timeMs, mix, feedback float64, opts ...DelayOption) (*Delay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}

	cfg := delayConfig{capacity: DefaultDelayCapacity}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	line, err := delay.New(cfg.capacity)
	if err != nil {
		return nil, err
	}

	d := &Delay{sampleRate: sampleRate, line: line}
	d.SetTime(timeMs)
	d.SetMix(mix)
	d.SetFeedback(feedback)

	return d, nil
}

// SetTime sets the delay time in milliseconds, clamped to [0, MaxDelayTimeMs].
// The active length is trunc(fs*t/1000), at least one sample and at most the
// capacity. History is kept, so lengthening again replays stale samples.
func (d *Delay) SetTime(ms float64) {
	d.timeMs = core.Clamp(ms, 0, MaxDelayTimeMs)
	d.line.SetLength(int(d.sampleRate * d.timeMs / 1000))
}

// SetMix sets the wet amount, clamped to [0, 1].
func (d *Delay) SetMix(mix float64) {
	d.mix = core.Clamp(mix, 0, 1)
}

// SetFeedback sets the feedback amount, clamped to [0, 0.99].
func (d *Delay) SetFeedback(feedback float64) {
	d.feedback = core.Clamp(feedback, 0, maxDelayFeedback)
}

// Reset clears the delay line.
func (d *Delay) Reset() {
	d.line.Reset()
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(input float64) float64 {
	delayed := d.line.Tap()
	d.line.Push(input + d.feedback*delayed)

	return core.ClampSample(input*(1-d.mix) + delayed*d.mix)
}

// ProcessInPlace applies delay to buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// SampleRate returns sample rate in Hz.
func (d *Delay) SampleRate() float64 { return d.sampleRate }

// Time returns the clamped delay time in milliseconds.
func (d *Delay) Time() float64 { return d.timeMs }

// Mix returns wet amount in [0, 1].
func (d *Delay) Mix() float64 { return d.mix }

// Feedback returns feedback amount in [0, 0.99].
func (d *Delay) Feedback() float64 { return d.feedback }

// Length returns the active delay length in samples.
func (d *Delay) Length() int { return d.line.Len() }

// Capacity returns the static line capacity in samples.
func (d *Delay) Capacity() int { return d.line.Cap() }
