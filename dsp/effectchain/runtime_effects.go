package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/effects"
)

const (
	defaultDelayTimeMs   = 500.0
	defaultDelayMix      = 0.3
	defaultDelayFeedback = 0.5

	defaultReverbTime      = 0.7
	defaultReverbWet       = 0.25
	defaultReverbCombScale = 0.25

	defaultSpringSizeMs    = 35.0
	defaultSpringFeedback  = 0.6
	defaultSpringMix       = 0.3
	defaultSpringAllpassMs = 1.5
)

func msToSamples(ms, sampleRate float64) int {
	return int(ms * sampleRate / 1000)
}

// delayRuntime handles the "delay" node type.
// Params: timeMs, mix, feedback.
type delayRuntime struct {
	fx *effects.Delay
}

func (r *delayRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.fx.SampleRate() {
		fx, err := newDelay(ctx.SampleRate)
		if err != nil {
			return fmt.Errorf("effectchain: create delay: %w", err)
		}

		r.fx = fx
	}

	r.fx.SetTime(p.GetNum("timeMs", defaultDelayTimeMs))
	r.fx.SetMix(p.GetNum("mix", defaultDelayMix))
	r.fx.SetFeedback(p.GetNum("feedback", defaultDelayFeedback))

	return nil
}

func (r *delayRuntime) ProcessSample(x float64) float64 { return r.fx.ProcessSample(x) }

func (r *delayRuntime) ProcessBlock(buf []float64) { r.fx.ProcessInPlace(buf) }

func (r *delayRuntime) Reset() { r.fx.Reset() }

// reverbRuntime handles the "reverb" node type.
// Params: time, wet, combScale.
type reverbRuntime struct {
	fx *effects.Reverb
}

func (r *reverbRuntime) Configure(_ Context, p Params) error {
	scale := p.GetNum("combScale", defaultReverbCombScale)
	if scale <= 0 || scale > 1 {
		return fmt.Errorf("effectchain: reverb comb scale must be in (0, 1]: %f", scale)
	}

	r.fx.SetCombScale(scale)
	r.fx.SetTime(p.GetNum("time", defaultReverbTime))
	r.fx.SetWet(p.GetNum("wet", defaultReverbWet))

	return nil
}

func (r *reverbRuntime) ProcessSample(x float64) float64 { return r.fx.ProcessSample(x) }

func (r *reverbRuntime) ProcessBlock(buf []float64) { r.fx.ProcessInPlace(buf) }

func (r *reverbRuntime) Reset() { r.fx.Reset() }

// springRuntime handles the "spring" node type.
// Params: sizeMs (up to MaxSpringSizeMs), feedback, mix, allpassMs.
type springRuntime struct {
	fx         *effects.SpringReverb
	sampleRate float64
}

func (r *springRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.sampleRate {
		fx, err := newSpring(ctx.SampleRate)
		if err != nil {
			return fmt.Errorf("effectchain: create spring reverb: %w", err)
		}

		r.fx = fx
		r.sampleRate = ctx.SampleRate
	}

	sizeMs := core.Clamp(p.GetNum("sizeMs", defaultSpringSizeMs), 0, MaxSpringSizeMs)
	r.fx.SetSize(msToSamples(sizeMs, r.sampleRate))
	r.fx.SetParams(
		p.GetNum("feedback", defaultSpringFeedback),
		p.GetNum("mix", defaultSpringMix),
		p.GetNum("allpassMs", defaultSpringAllpassMs),
		r.sampleRate,
	)

	return nil
}

func (r *springRuntime) ProcessSample(x float64) float64 { return r.fx.ProcessSample(x) }

func (r *springRuntime) ProcessBlock(buf []float64) { r.fx.ProcessInPlace(buf) }

func (r *springRuntime) Reset() { r.fx.Reset() }

// overdriveRuntime handles the "overdrive" node type.
// Params: drive, output, preHighpassHz, preLowpassHz, postLowpassHz,
// clipPositive, clipNegative and the string param clip.
type overdriveRuntime struct {
	fx *effects.Overdrive
}

func (r *overdriveRuntime) Configure(ctx Context, p Params) error {
	def := effects.DefaultOverdriveParams()

	clip, err := effects.ParseClipType(p.GetStr("clip", def.Clip.String()))
	if err != nil {
		return fmt.Errorf("effectchain: overdrive: %w", err)
	}

	params := effects.OverdriveParams{
		Drive:         p.GetNum("drive", def.Drive),
		Output:        p.GetNum("output", def.Output),
		PreHighpassHz: p.GetNum("preHighpassHz", def.PreHighpassHz),
		PreLowpassHz:  p.GetNum("preLowpassHz", def.PreLowpassHz),
		PostLowpassHz: p.GetNum("postLowpassHz", def.PostLowpassHz),
		Clip:          clip,
		ClipPositive:  p.GetNum("clipPositive", def.ClipPositive),
		ClipNegative:  p.GetNum("clipNegative", def.ClipNegative),
	}

	if ctx.SampleRate != r.fx.SampleRate() {
		fx, err := effects.NewOverdrive(ctx.SampleRate, params)
		if err != nil {
			return fmt.Errorf("effectchain: create overdrive: %w", err)
		}

		r.fx = fx

		return nil
	}

	err = r.fx.UpdateParams(params)
	if err != nil {
		return fmt.Errorf("effectchain: overdrive: %w", err)
	}

	return nil
}

func (r *overdriveRuntime) ProcessSample(x float64) float64 { return r.fx.ProcessSample(x) }

func (r *overdriveRuntime) ProcessBlock(buf []float64) { r.fx.ProcessInPlace(buf) }

func (r *overdriveRuntime) Reset() { r.fx.Reset() }

func (r *overdriveRuntime) Stages() []effects.Stage { return r.fx.Stages() }
