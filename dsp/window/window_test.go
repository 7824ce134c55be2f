package window

import (
	"math"
	"testing"
)

var allTypes = Types()

func TestGenerateIsFiniteAndSymmetric(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 65)
			if len(w) != 65 {
				t.Fatalf("len=%d, want 65", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}

				if d := math.Abs(v - w[len(w)-1-i]); d > 1e-12 {
					t.Fatalf("asymmetric at %d: %v vs %v", i, v, w[len(w)-1-i])
				}
			}

			if peak := w[32]; math.Abs(peak-1) > 1e-6 {
				t.Fatalf("center coefficient = %v, want 1", peak)
			}
		})
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}

	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 0 {
		t.Fatalf("Generate(1) = %v", w)
	}
}

func TestPeriodicCoherentGainMatchesMetadata(t *testing.T) {
	for _, typ := range allTypes {
		w := Generate(typ, 1024, WithPeriodic())

		sum := 0.0
		for _, v := range w {
			sum += v
		}

		got := sum / float64(len(w))
		if want := Info(typ).CoherentGain; math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s coherent gain = %v, want %v", typ, got, want)
		}
	}
}

func TestEquivalentNoiseBandwidthMatchesMetadata(t *testing.T) {
	for _, typ := range allTypes {
		enbw, err := EquivalentNoiseBandwidth(Generate(typ, 4096, WithPeriodic()))
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}

		if want := Info(typ).ENBW; math.Abs(enbw-want) > 1e-3 {
			t.Fatalf("%s ENBW = %v, want %v", typ, enbw, want)
		}
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}

	if _, err := EquivalentNoiseBandwidth([]float64{1, -1}); err == nil {
		t.Fatal("expected error for zero coherent gain")
	}
}

func TestApplyMatchesGenerate(t *testing.T) {
	buf := make([]float64, 33)
	for i := range buf {
		buf[i] = 2
	}

	Apply(TypeBlackman, buf)

	w := Generate(TypeBlackman, len(buf))
	for i := range buf {
		if math.Abs(buf[i]-2*w[i]) > 1e-12 {
			t.Fatalf("sample %d: got %v want %v", i, buf[i], 2*w[i])
		}
	}

	if err := ApplyCoefficientsInPlace(buf, w[:3]); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"hann":            TypeHann,
		" Hamming ":       TypeHamming,
		"blackman-harris": TypeBlackmanHarris4Term,
		"BlackmanHarris":  TypeBlackmanHarris4Term,
		"flattop":         TypeFlatTop,
		"flat_top":        TypeFlatTop,
		"rectangular":     TypeRectangular,
	}

	for in, want := range tests {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Fatalf("ParseType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseType("kaiser"); err == nil {
		t.Fatal("expected error for unsupported window")
	}
}

func BenchmarkApplyHann(b *testing.B) {
	buf := make([]float64, 4096)

	b.ReportAllocs()

	for range b.N {
		Apply(TypeHann, buf)
	}
}
