package biquad

import (
	"sync"

	"github.com/cwbudde/algo-pedal/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"

	_ "github.com/cwbudde/algo-pedal/dsp/filter/biquad/internal/arch/generic" // register block kernels
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Unity returns the exact bypass configuration: B0 = 1, everything else 0.
func Unity() Coefficients {
	return Coefficients{B0: 1}
}

// IsUnity reports whether c is the exact bypass configuration.
func (c Coefficients) IsUnity() bool {
	return c == Unity()
}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form II Transposed processing.
//
// The zero value is a silent section (all coefficients zero); use
// [NewSection] or [Section.SetCoefficients] before processing.
type Section struct {
	Coefficients

	d0, d1 float64
}

var (
	kernel     registry.Kernel
	kernelOnce sync.Once
)

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// SetCoefficients replaces the coefficients and clears the state taps.
//
// Running new coefficients against state accumulated under the old ones
// produces an audible click, so the two are never mixed.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
	s.d0 = 0
	s.d1 = 0
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters buf in place with the block kernel selected for the
// running CPU. It does not allocate and matches repeated ProcessSample calls.
func (s *Section) ProcessBlock(buf []float64) {
	if len(buf) == 0 {
		return
	}

	kernelOnce.Do(selectKernel)

	c := registry.Coefficients{B0: s.B0, B1: s.B1, B2: s.B2, A1: s.A1, A2: s.A2}
	s.d0, s.d1 = kernel.Run(c, s.d0, s.d1, buf)
}

// Kernel returns the name of the block kernel ProcessBlock uses.
func Kernel() string {
	kernelOnce.Do(selectKernel)

	return kernel.Name
}

func selectKernel() {
	k, ok := registry.Kernels.Select(cpu.DetectFeatures())
	if !ok || k.Run == nil {
		panic("biquad: no block kernel for this CPU")
	}

	kernel = k
}

// Reset clears the delay taps without touching the coefficients.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}
