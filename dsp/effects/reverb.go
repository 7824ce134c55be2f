package effects

import (
	"fmt"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/delay"
)

const (
	reverbNumCombs     = 4
	reverbNumAllpasses = 3

	reverbAllpassGain = 0.7

	defaultReverbTime      = 0.7
	defaultReverbWet       = 0.25
	defaultReverbCombScale = 1.0 / reverbNumCombs
)

// Static section capacities in samples. The lengths are the 25 kHz Schroeder
// tuning doubled for 48 kHz operation; "time" selects a fraction of each.
var (
	reverbCombCapacities    = [reverbNumCombs]int{3460 * 2, 2988 * 2, 3882 * 2, 4312 * 2}
	reverbCombGains         = [reverbNumCombs]float64{0.805, 0.827, 0.783, 0.764}
	reverbAllpassCapacities = [reverbNumAllpasses]int{480 * 2, 161 * 2, 46 * 2}
)

// ReverbOption mutates construction-time parameters.
type ReverbOption func(*reverbConfig) error

type reverbConfig struct {
	time      float64
	wet       float64
	combScale float64
}

// WithReverbTime sets the initial time in [0, 1].
func WithReverbTime(t float64) ReverbOption {
	return func(cfg *reverbConfig) error {
		if t < 0 || t > 1 || !core.IsFinite(t) {
			return fmt.Errorf("reverb time must be in [0, 1]: %f", t)
		}

		cfg.time = t

		return nil
	}
}

// WithReverbWet sets the initial wet amount in [0, 1].
func WithReverbWet(wet float64) ReverbOption {
	return func(cfg *reverbConfig) error {
		if wet < 0 || wet > 1 || !core.IsFinite(wet) {
			return fmt.Errorf("reverb wet must be in [0, 1]: %f", wet)
		}

		cfg.wet = wet

		return nil
	}
}

// WithReverbCombScale sets the gain applied to the sum of the comb outputs.
// The default 0.25 averages the four combs; 1 uses the plain sum.
func WithReverbCombScale(scale float64) ReverbOption {
	return func(cfg *reverbConfig) error {
		if scale <= 0 || scale > 1 || !core.IsFinite(scale) {
			return fmt.Errorf("reverb comb scale must be in (0, 1]: %f", scale)
		}

		cfg.combScale = scale

		return nil
	}
}

type reverbComb struct {
	line     *delay.Line
	capacity int
	feedback float64
}

func (c *reverbComb) process(input float64) float64 {
	readback := c.line.Tap()
	c.line.Push(readback*c.feedback + input)

	return readback
}

type reverbAllpass struct {
	line     *delay.Line
	capacity int
	gain     float64
}

func (a *reverbAllpass) process(input float64) float64 {
	readback := a.line.Tap() - a.gain*input
	a.line.Push(readback*a.gain + input)

	return readback
}

// Reverb is a Schroeder reverberator: four parallel feedback combs, scaled,
// feeding three series allpasses, blended with the dry input.
type Reverb struct {
	time      float64
	wet       float64
	combScale float64

	combs   [reverbNumCombs]reverbComb
	allpass [reverbNumAllpasses]reverbAllpass
}

// NewReverb allocates all sections at their static capacity.
func NewReverb(opts ...ReverbOption) (*Reverb, error) {
	cfg := reverbConfig{
		time:      defaultReverbTime,
		wet:       defaultReverbWet,
		combScale: defaultReverbCombScale,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &Reverb{combScale: cfg.combScale}

	for i := range r.combs {
		line, err := delay.New(reverbCombCapacities[i])
		if err != nil {
			return nil, fmt.Errorf("reverb comb %d: %w", i, err)
		}

		r.combs[i] = reverbComb{
			line:     line,
			capacity: reverbCombCapacities[i],
			feedback: reverbCombGains[i],
		}
	}

	for i := range r.allpass {
		line, err := delay.New(reverbAllpassCapacities[i])
		if err != nil {
			return nil, fmt.Errorf("reverb allpass %d: %w", i, err)
		}

		r.allpass[i] = reverbAllpass{
			line:     line,
			capacity: reverbAllpassCapacities[i],
			gain:     reverbAllpassGain,
		}
	}

	r.SetTime(cfg.time)
	r.SetWet(cfg.wet)

	return r, nil
}

// SetTime sets the size of the network, clamped to [0, 1]. Each section's
// active length becomes trunc(t*capacity), at least one sample.
func (r *Reverb) SetTime(t float64) {
	r.time = core.Clamp(t, 0, 1)

	for i := range r.combs {
		c := &r.combs[i]
		c.line.SetLength(int(r.time * float64(c.capacity)))
	}

	for i := range r.allpass {
		a := &r.allpass[i]
		a.line.SetLength(int(r.time * float64(a.capacity)))
	}
}

// SetWet sets the wet amount, clamped to [0, 1].
func (r *Reverb) SetWet(wet float64) {
	r.wet = core.Clamp(wet, 0, 1)
}

// SetCombScale sets the gain applied to the comb sum. Values outside (0, 1]
// are ignored.
func (r *Reverb) SetCombScale(scale float64) {
	if scale <= 0 || scale > 1 || !core.IsFinite(scale) {
		return
	}

	r.combScale = scale
}

// Reset clears all section buffers.
func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].line.Reset()
	}

	for i := range r.allpass {
		r.allpass[i].line.Reset()
	}
}

// ProcessSample processes one sample.
func (r *Reverb) ProcessSample(input float64) float64 {
	var acc float64
	for i := range r.combs {
		acc += r.combs[i].process(input)
	}

	acc *= r.combScale

	for i := range r.allpass {
		acc = r.allpass[i].process(acc)
	}

	return (1-r.wet)*input + r.wet*acc
}

// ProcessInPlace applies reverb to buf in place.
func (r *Reverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// Time returns the network size in [0, 1].
func (r *Reverb) Time() float64 { return r.time }

// Wet returns the wet amount in [0, 1].
func (r *Reverb) Wet() float64 { return r.wet }

// CombScale returns the gain applied to the comb sum.
func (r *Reverb) CombScale() float64 { return r.combScale }

// Lengths returns the active comb and allpass lengths in samples.
func (r *Reverb) Lengths() (combs [reverbNumCombs]int, allpasses [reverbNumAllpasses]int) {
	for i := range r.combs {
		combs[i] = r.combs[i].line.Len()
	}

	for i := range r.allpass {
		allpasses[i] = r.allpass[i].line.Len()
	}

	return combs, allpasses
}
