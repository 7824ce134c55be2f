package effectchain

import (
	"math"

	"github.com/cwbudde/algo-pedal/dsp/effects"
)

// Built-in effect type names.
const (
	TypeDelay     = "delay"
	TypeReverb    = "reverb"
	TypeSpring    = "spring"
	TypeOverdrive = "overdrive"
)

// MaxSpringSizeMs is the longest spring buffer a runtime allocates.
const MaxSpringSizeMs = 100.0

// DefaultRegistry returns a Registry pre-populated with all built-in effect runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(TypeDelay, func(ctx Context) (Runtime, error) {
		fx, err := newDelay(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &delayRuntime{fx: fx}, nil
	})
	r.MustRegister(TypeReverb, func(_ Context) (Runtime, error) {
		fx, err := effects.NewReverb()
		if err != nil {
			return nil, err
		}

		return &reverbRuntime{fx: fx}, nil
	})
	r.MustRegister(TypeSpring, func(ctx Context) (Runtime, error) {
		fx, err := newSpring(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &springRuntime{fx: fx, sampleRate: ctx.SampleRate}, nil
	})
	r.MustRegister(TypeOverdrive, func(ctx Context) (Runtime, error) {
		fx, err := effects.NewOverdrive(ctx.SampleRate, effects.DefaultOverdriveParams())
		if err != nil {
			return nil, err
		}

		return &overdriveRuntime{fx: fx}, nil
	})

	return r
}

// newDelay sizes the line to hold the maximum delay time at sampleRate.
func newDelay(sampleRate float64) (*effects.Delay, error) {
	capacity := max(1, int(math.Ceil(effects.MaxDelayTimeMs*sampleRate/1000)))

	return effects.NewDelay(sampleRate,
		defaultDelayTimeMs, defaultDelayMix, defaultDelayFeedback,
		effects.WithDelayCapacity(capacity))
}

func newSpring(sampleRate float64) (*effects.SpringReverb, error) {
	capacity := max(2, int(math.Ceil(MaxSpringSizeMs*sampleRate/1000)))

	fx, err := effects.NewSpringReverb(capacity, defaultSpringFeedback, defaultSpringMix)
	if err != nil {
		return nil, err
	}

	fx.SetSize(msToSamples(defaultSpringSizeMs, sampleRate))
	fx.SetParams(defaultSpringFeedback, defaultSpringMix, defaultSpringAllpassMs, sampleRate)

	return fx, nil
}
