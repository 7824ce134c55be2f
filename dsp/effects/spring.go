package effects

import (
	"fmt"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/delay"
)

const (
	defaultSpringAllpassCoeff = 0.5
	maxSpringAllpassCoeff     = 0.999
	maxSpringFeedback         = 0.99
)

// SpringReverb is a single circular buffer whose readback passes through a
// first-order allpass before being fed back. It approximates the dispersive
// ring of a spring tank.
type SpringReverb struct {
	line *delay.Line

	feedback float64
	mix      float64

	coeff float64
	z1    float64
}

// NewSpringReverb allocates a buffer of size samples. feedback is clamped to
// [0, 0.99] and mix to [0, 1].
func NewSpringReverb(size int, feedback, mix float64) (*SpringReverb, error) {
	if size < 2 {
		return nil, fmt.Errorf("spring reverb size must be >= 2: %d", size)
	}

	line, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	s := &SpringReverb{
		line:  line,
		coeff: defaultSpringAllpassCoeff,
	}
	s.setLevels(feedback, mix)

	return s, nil
}

// SetParams updates feedback and mix and derives the allpass coefficient
// from a delay in milliseconds: g = (n-1)/(n+1) with n = allpassMs*fs/1000,
// clamped to [0, 0.999]. A non-positive sample rate keeps the current
// coefficient.
func (s *SpringReverb) SetParams(feedback, mix, allpassMs, sampleRate float64) {
	s.setLevels(feedback, mix)

	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}

	n := allpassMs / 1000 * sampleRate
	s.coeff = core.Clamp((n-1)/(n+1), 0, maxSpringAllpassCoeff)
}

func (s *SpringReverb) setLevels(feedback, mix float64) {
	s.feedback = core.Clamp(feedback, 0, maxSpringFeedback)
	s.mix = core.Clamp(mix, 0, 1)
}

// Reset clears the buffer and the allpass state.
func (s *SpringReverb) Reset() {
	s.line.Reset()
	s.z1 = 0
}

// ProcessSample processes one sample.
func (s *SpringReverb) ProcessSample(input float64) float64 {
	delayed := s.line.Peek(1)

	y := -s.coeff*delayed + s.z1
	s.z1 = delayed + s.coeff*y

	s.line.Push(input + y*s.feedback)

	return (1-s.mix)*input + s.mix*y
}

// ProcessInPlace applies the spring reverb to buf in place.
func (s *SpringReverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}

// Feedback returns the feedback amount.
func (s *SpringReverb) Feedback() float64 { return s.feedback }

// Mix returns the wet amount.
func (s *SpringReverb) Mix() float64 { return s.mix }

// AllpassCoeff returns the allpass coefficient g.
func (s *SpringReverb) AllpassCoeff() float64 { return s.coeff }

// SetSize changes the active buffer length without reallocating. n is
// clamped to [2, Capacity()].
func (s *SpringReverb) SetSize(n int) {
	s.line.SetLength(max(n, 2))
}

// Size returns the active buffer length in samples.
func (s *SpringReverb) Size() int { return s.line.Len() }

// Capacity returns the allocated buffer length in samples.
func (s *SpringReverb) Capacity() int { return s.line.Cap() }
