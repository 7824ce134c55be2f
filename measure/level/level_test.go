package level

import (
	"math"
	"testing"
)

// dbTolerance leaves room for the fastmath build.
const dbTolerance = 0.05

func sine(n int, amp, cycles, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amp*math.Sin(2*math.Pi*cycles*float64(i)/float64(n))
	}

	return out
}

func TestAnalyzeSine(t *testing.T) {
	s := Analyze(sine(4800, 0.5, 100, 0))

	if s.Samples != 4800 {
		t.Fatalf("Samples = %d", s.Samples)
	}

	if math.Abs(s.Peak-0.5) > 1e-3 {
		t.Fatalf("Peak = %f, want 0.5", s.Peak)
	}

	if want := 0.5 / math.Sqrt2; math.Abs(s.RMS-want) > 1e-9 {
		t.Fatalf("RMS = %f, want %f", s.RMS, want)
	}

	if math.Abs(s.DC) > 1e-12 {
		t.Fatalf("DC = %g, want 0", s.DC)
	}

	if math.Abs(s.Crest-math.Sqrt2) > 1e-2 {
		t.Fatalf("Crest = %f, want sqrt2", s.Crest)
	}

	if math.Abs(s.CrestDB()-3.0103) > dbTolerance {
		t.Fatalf("CrestDB = %f, want ~3.01", s.CrestDB())
	}

	if s.Clipped != 0 {
		t.Fatalf("Clipped = %d, want 0", s.Clipped)
	}
}

func TestAnalyzeSeparatesDC(t *testing.T) {
	s := Analyze(sine(4800, 0.25, 50, 0.1))

	if math.Abs(s.DC-0.1) > 1e-12 {
		t.Fatalf("DC = %f, want 0.1", s.DC)
	}

	if want := 0.25 / math.Sqrt2; math.Abs(s.StdDev-want) > 1e-9 {
		t.Fatalf("StdDev = %f, want %f", s.StdDev, want)
	}

	if want := math.Sqrt(0.1*0.1 + 0.25*0.25/2); math.Abs(s.RMS-want) > 1e-9 {
		t.Fatalf("RMS = %f, want %f", s.RMS, want)
	}
}

func TestAnalyzeNegativePeakAndClipping(t *testing.T) {
	s := Analyze([]float64{0.1, -1, 0.3, 1, -0.2})

	if s.Peak != 1 {
		t.Fatalf("Peak = %f, want 1", s.Peak)
	}

	if s.Clipped != 2 {
		t.Fatalf("Clipped = %d, want 2", s.Clipped)
	}

	if got := CountClipped([]float64{0.5, -0.6, 0.2}, 0.5); got != 2 {
		t.Fatalf("CountClipped = %d, want 2", got)
	}
}

func TestAnalyzeEmptyAndSilence(t *testing.T) {
	if s := Analyze(nil); s != (Stats{}) {
		t.Fatalf("Analyze(nil) = %+v", s)
	}

	s := Analyze(make([]float64, 64))
	if s.Crest != 0 || s.RMS != 0 {
		t.Fatalf("silence: %+v", s)
	}

	if !math.IsInf(s.PeakDB(), -1) || !math.IsInf(s.RMSDB(), -1) {
		t.Fatalf("silence dB should be -Inf: %f %f", s.PeakDB(), s.RMSDB())
	}
}

func TestDBConversions(t *testing.T) {
	tests := []struct {
		lin, db float64
	}{
		{1, 0},
		{0.5, -6.0206},
		{0.1, -20},
		{2, 6.0206},
	}

	for _, tt := range tests {
		if got := ToDB(tt.lin); math.Abs(got-tt.db) > dbTolerance {
			t.Errorf("ToDB(%f) = %f, want %f", tt.lin, got, tt.db)
		}

		if got := FromDB(tt.db); math.Abs(got-tt.lin) > 1e-4 {
			t.Errorf("FromDB(%f) = %f, want %f", tt.db, got, tt.lin)
		}
	}

	for _, v := range []float64{0, -1, math.NaN()} {
		if !math.IsInf(ToDB(v), -1) {
			t.Errorf("ToDB(%f) should be -Inf", v)
		}
	}
}
