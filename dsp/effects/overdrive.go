package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/filter/biquad"
	"github.com/cwbudde/algo-pedal/dsp/filter/design"
)

const (
	minPreHighpassHz   = 5.0
	maxOverdriveDrive  = 100.0
	maxOverdriveOutput = 4.0
	minClipThreshold   = 0.01

	overdriveQ = 1 / math.Sqrt2
)

// OverdriveParams are the user-facing tunables of an Overdrive.
//
// A cutoff of 0 disables the stage. The pre highpass is clamped to at least
// 5 Hz when enabled; any cutoff at or above 0.45*fs degrades to bypass.
// PreHighpassHz = 0 is the only setting that removes the pre highpass, so
// with all three cutoffs at 0 the unit is exactly shaper(Drive*x)*Output.
type OverdriveParams struct {
	Drive  float64 // linear gain before the shaper, [0, 100]
	Output float64 // linear trim after the post filter, [0, 4]

	PreHighpassHz float64 // 0 disables the stage; positive values are raised to >= 5 Hz
	PreLowpassHz  float64
	PostLowpassHz float64

	Clip ClipType

	// ClipPositive and ClipNegative are the hard-clip thresholds, both
	// positive magnitudes in [0.01, 1]. Other shapers ignore them.
	ClipPositive float64
	ClipNegative float64
}

// DefaultOverdriveParams returns the stock voicing: 80 Hz pre highpass, no
// pre lowpass, 5 kHz post lowpass, drive 4, tanh, output 0.5.
func DefaultOverdriveParams() OverdriveParams {
	return OverdriveParams{
		Drive:         4,
		Output:        0.5,
		PreHighpassHz: 80,
		PreLowpassHz:  0,
		PostLowpassHz: 5000,
		Clip:          ClipTanh,
		ClipPositive:  1,
		ClipNegative:  1,
	}
}

func (p OverdriveParams) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"drive", p.Drive},
		{"output", p.Output},
		{"pre highpass", p.PreHighpassHz},
		{"pre lowpass", p.PreLowpassHz},
		{"post lowpass", p.PostLowpassHz},
		{"positive clip", p.ClipPositive},
		{"negative clip", p.ClipNegative},
	} {
		if !core.IsFinite(f.v) {
			return fmt.Errorf("overdrive %s must be finite: %f", f.name, f.v)
		}
	}

	if !p.Clip.valid() {
		return fmt.Errorf("overdrive clip type is invalid: %d", p.Clip)
	}

	return nil
}

func (p OverdriveParams) sanitized() OverdriveParams {
	p.Drive = core.Clamp(p.Drive, 0, maxOverdriveDrive)
	p.Output = core.Clamp(p.Output, 0, maxOverdriveOutput)
	p.ClipPositive = core.Clamp(p.ClipPositive, minClipThreshold, 1)
	p.ClipNegative = core.Clamp(p.ClipNegative, minClipThreshold, 1)

	if p.PreHighpassHz > 0 && p.PreHighpassHz < minPreHighpassHz {
		p.PreHighpassHz = minPreHighpassHz
	}

	p.PreHighpassHz = math.Max(p.PreHighpassHz, 0)
	p.PreLowpassHz = math.Max(p.PreLowpassHz, 0)
	p.PostLowpassHz = math.Max(p.PostLowpassHz, 0)

	return p
}

// Overdrive is pre highpass -> optional pre lowpass -> drive -> waveshaper ->
// optional post lowpass -> output trim.
type Overdrive struct {
	sampleRate float64
	params     OverdriveParams

	preHP  biquad.Section
	preLP  biquad.Section
	postLP biquad.Section
}

// NewOverdrive creates an overdrive with the given parameters.
func NewOverdrive(sampleRate float64, p OverdriveParams) (*Overdrive, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("overdrive sample rate must be > 0 and finite: %f", sampleRate)
	}

	o := &Overdrive{sampleRate: sampleRate}
	if err := o.UpdateParams(p); err != nil {
		return nil, err
	}

	return o, nil
}

// UpdateParams clamps p into range, designs all three filter sections and
// only then swaps them in with cleared state. Non-finite values and unknown
// clip types are rejected and leave the unit untouched.
func (o *Overdrive) UpdateParams(p OverdriveParams) error {
	if err := p.validate(); err != nil {
		return err
	}

	p = p.sanitized()

	preHP := design.Configure(design.KindHighpass, o.sampleRate, p.PreHighpassHz, overdriveQ)
	preLP := design.Configure(design.KindLowpass, o.sampleRate, p.PreLowpassHz, overdriveQ)
	postLP := design.Configure(design.KindLowpass, o.sampleRate, p.PostLowpassHz, overdriveQ)

	o.params = p
	o.preHP.SetCoefficients(preHP)
	o.preLP.SetCoefficients(preLP)
	o.postLP.SetCoefficients(postLP)

	return nil
}

// Params returns the sanitized parameters in effect.
func (o *Overdrive) Params() OverdriveParams { return o.params }

// SampleRate returns sample rate in Hz.
func (o *Overdrive) SampleRate() float64 { return o.sampleRate }

// Reset clears the filter state.
func (o *Overdrive) Reset() {
	o.preHP.Reset()
	o.preLP.Reset()
	o.postLP.Reset()
}

// ProcessSample processes one sample.
func (o *Overdrive) ProcessSample(input float64) float64 {
	x := o.preHP.ProcessSample(input)
	x = o.preLP.ProcessSample(x)
	x = o.shape(x * o.params.Drive)
	x = o.postLP.ProcessSample(x)

	return x * o.params.Output
}

// ProcessInPlace applies the overdrive to buf in place, one stage at a time.
// The result matches ProcessSample over the same input.
func (o *Overdrive) ProcessInPlace(buf []float64) {
	o.preHP.ProcessBlock(buf)
	o.preLP.ProcessBlock(buf)

	drive := o.params.Drive
	for i, x := range buf {
		buf[i] = o.shape(x * drive)
	}

	o.postLP.ProcessBlock(buf)

	out := o.params.Output
	for i := range buf {
		buf[i] *= out
	}
}

// Stage is the name and coefficients of one Overdrive filter section.
type Stage struct {
	Name         string
	Coefficients biquad.Coefficients
}

// Stages returns the pre highpass, pre lowpass and post lowpass sections in
// signal order. Disabled stages report [biquad.Unity].
func (o *Overdrive) Stages() []Stage {
	return []Stage{
		{Name: "pre highpass", Coefficients: o.preHP.Coefficients},
		{Name: "pre lowpass", Coefficients: o.preLP.Coefficients},
		{Name: "post lowpass", Coefficients: o.postLP.Coefficients},
	}
}

func (o *Overdrive) shape(x float64) float64 {
	switch o.params.Clip {
	case ClipAtan:
		return Atan(x)
	case ClipHard:
		return HardClip(x, o.params.ClipPositive, o.params.ClipNegative)
	case ClipVintage:
		return Vintage(x)
	default:
		return Tanh(x)
	}
}
