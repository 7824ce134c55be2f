package effectchain

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pedal/dsp/effects"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	got := reg.Types()
	want := []string{TypeDelay, TypeOverdrive, TypeReverb, TypeSpring}

	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Types() = %v, want %v", got, want)
		}
	}
}

func TestDefaultRegistryCreatesRuntimes(t *testing.T) {
	t.Parallel()

	ctx := Context{SampleRate: 44100}
	reg := DefaultRegistry()

	for _, effectType := range reg.Types() {
		t.Run(effectType, func(t *testing.T) {
			t.Parallel()

			factory := reg.Lookup(effectType)
			if factory == nil {
				t.Fatalf("no factory for %s", effectType)
			}

			rt, err := factory(ctx)
			if err != nil {
				t.Fatalf("factory error for %s: %v", effectType, err)
			}

			err = rt.Configure(ctx, Params{Type: effectType})
			if err != nil {
				t.Fatalf("Configure(%s) with defaults: %v", effectType, err)
			}

			for range 256 {
				y := rt.ProcessSample(0.5)
				if math.IsNaN(y) || math.IsInf(y, 0) {
					t.Fatalf("%s produced non-finite output", effectType)
				}
			}

			rt.Reset()
		})
	}
}

func TestDelayRuntimeDefaults(t *testing.T) {
	t.Parallel()

	rt, err := DefaultRegistry().Lookup(TypeDelay)(testCtx())
	if err != nil {
		t.Fatalf("factory error: %v", err)
	}

	if err := rt.Configure(testCtx(), Params{}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	fx := rt.(*delayRuntime).fx
	if fx.Time() != 500 || fx.Mix() != 0.3 || fx.Feedback() != 0.5 {
		t.Fatalf("defaults: time=%v mix=%v feedback=%v", fx.Time(), fx.Mix(), fx.Feedback())
	}

	if fx.Length() != 24000 || fx.Capacity() != 24000 {
		t.Fatalf("length=%d capacity=%d, want 24000", fx.Length(), fx.Capacity())
	}
}

func TestDelayRuntimeScalesCapacityWithSampleRate(t *testing.T) {
	t.Parallel()

	ctx := Context{SampleRate: 96000}

	rt, err := DefaultRegistry().Lookup(TypeDelay)(ctx)
	if err != nil {
		t.Fatalf("factory error: %v", err)
	}

	if err := rt.Configure(ctx, Params{Num: map[string]float64{"timeMs": 500}}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	fx := rt.(*delayRuntime).fx
	if fx.Length() != 48000 || fx.Capacity() != 48000 {
		t.Fatalf("length=%d capacity=%d, want 48000", fx.Length(), fx.Capacity())
	}
}

func TestReverbRuntimeParams(t *testing.T) {
	t.Parallel()

	rt, err := DefaultRegistry().Lookup(TypeReverb)(testCtx())
	if err != nil {
		t.Fatalf("factory error: %v", err)
	}

	err = rt.Configure(testCtx(), Params{Num: map[string]float64{"time": 0.5, "wet": 0.4, "combScale": 1}})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	fx := rt.(*reverbRuntime).fx
	if fx.Time() != 0.5 || fx.Wet() != 0.4 || fx.CombScale() != 1 {
		t.Fatalf("time=%v wet=%v scale=%v", fx.Time(), fx.Wet(), fx.CombScale())
	}

	err = rt.Configure(testCtx(), Params{Num: map[string]float64{"combScale": 2}})
	if err == nil {
		t.Fatal("expected error for comb scale 2")
	}
}

func TestSpringRuntimeParams(t *testing.T) {
	t.Parallel()

	rt, err := DefaultRegistry().Lookup(TypeSpring)(testCtx())
	if err != nil {
		t.Fatalf("factory error: %v", err)
	}

	err = rt.Configure(testCtx(), Params{Num: map[string]float64{
		"sizeMs": 20, "feedback": 0.4, "mix": 0.5, "allpassMs": 1,
	}})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	fx := rt.(*springRuntime).fx
	if fx.Size() != 960 || fx.Capacity() != 4800 {
		t.Fatalf("size=%d capacity=%d, want 960/4800", fx.Size(), fx.Capacity())
	}

	if fx.Feedback() != 0.4 || fx.Mix() != 0.5 {
		t.Fatalf("feedback=%v mix=%v", fx.Feedback(), fx.Mix())
	}

	if want := 47.0 / 49.0; math.Abs(fx.AllpassCoeff()-want) > 1e-12 {
		t.Fatalf("coeff=%v, want %v", fx.AllpassCoeff(), want)
	}

	if err := rt.Configure(testCtx(), Params{Num: map[string]float64{"sizeMs": 1e6}}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if fx.Size() != fx.Capacity() {
		t.Fatalf("oversized spring not clamped: %d", fx.Size())
	}
}

func TestOverdriveRuntimeParams(t *testing.T) {
	t.Parallel()

	rt, err := DefaultRegistry().Lookup(TypeOverdrive)(testCtx())
	if err != nil {
		t.Fatalf("factory error: %v", err)
	}

	err = rt.Configure(testCtx(), Params{
		Num: map[string]float64{"drive": 10, "output": 1, "clipPositive": 0.5, "clipNegative": 0.25},
		Str: map[string]string{"clip": "hard"},
	})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	p := rt.(*overdriveRuntime).fx.Params()
	if p.Drive != 10 || p.Output != 1 || p.Clip != effects.ClipHard {
		t.Fatalf("params = %+v", p)
	}

	if p.ClipPositive != 0.5 || p.ClipNegative != 0.25 {
		t.Fatalf("clip thresholds = %v/%v", p.ClipPositive, p.ClipNegative)
	}

	err = rt.Configure(testCtx(), Params{Str: map[string]string{"clip": "fuzz"}})
	if err == nil {
		t.Fatal("expected error for unknown clip type")
	}

	if got := rt.(*overdriveRuntime).fx.Params().Clip; got != effects.ClipHard {
		t.Fatalf("failed configure changed clip to %v", got)
	}
}

func TestRuntimeConfigureRebuildsOnSampleRateChange(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	for _, effectType := range []string{TypeDelay, TypeSpring, TypeOverdrive} {
		rt, err := reg.Lookup(effectType)(Context{SampleRate: 44100})
		if err != nil {
			t.Fatalf("factory error for %s: %v", effectType, err)
		}

		if err := rt.Configure(Context{SampleRate: 96000}, Params{}); err != nil {
			t.Fatalf("Configure(%s) at 96 kHz: %v", effectType, err)
		}
	}

	rt, _ := reg.Lookup(TypeDelay)(Context{SampleRate: 44100})
	_ = rt.Configure(Context{SampleRate: 96000}, Params{})

	if got := rt.(*delayRuntime).fx.SampleRate(); got != 96000 {
		t.Fatalf("delay sample rate = %v, want 96000", got)
	}
}
