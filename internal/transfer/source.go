package transfer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Source produces stereo input frames.
type Source interface {
	// ReadFrames fills left and right, which have equal length, and returns
	// the number of frames written. It returns io.EOF once exhausted.
	ReadFrames(left, right []float64) (int, error)
	SampleRate() float64
}

// SineSource is a test tone on both channels.
type SineSource struct {
	step       float64
	amplitude  float64
	sampleRate float64
	phase      float64
	remaining  int
	endless    bool
}

// NewSineSource returns a tone of the given frequency and amplitude. frames
// limits its length; zero or less never ends.
func NewSineSource(freqHz, amplitude, sampleRate float64, frames int) (*SineSource, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("transfer: sample rate must be > 0: %f", sampleRate)
	}

	if freqHz < 0 || freqHz >= sampleRate/2 {
		return nil, fmt.Errorf("transfer: sine frequency must be in [0, fs/2): %f", freqHz)
	}

	return &SineSource{
		step:       2 * math.Pi * freqHz / sampleRate,
		amplitude:  amplitude,
		sampleRate: sampleRate,
		remaining:  frames,
		endless:    frames <= 0,
	}, nil
}

func (s *SineSource) SampleRate() float64 { return s.sampleRate }

func (s *SineSource) ReadFrames(left, right []float64) (int, error) {
	n := len(left)
	if !s.endless {
		if s.remaining == 0 {
			return 0, io.EOF
		}

		n = min(n, s.remaining)
		s.remaining -= n
	}

	for i := range n {
		v := s.amplitude * math.Sin(s.phase)
		left[i], right[i] = v, v

		s.phase += s.step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}

	return n, nil
}

type paddedSource struct {
	Source
	silence int
}

// Pad returns a source that continues src with frames of silence, so delay
// and reverb tails are heard after the input ends.
func Pad(src Source, frames int) Source {
	if frames <= 0 {
		return src
	}

	return &paddedSource{Source: src, silence: frames}
}

func (s *paddedSource) ReadFrames(left, right []float64) (int, error) {
	n, err := s.Source.ReadFrames(left, right)
	if n > 0 || !errors.Is(err, io.EOF) {
		return n, err
	}

	if s.silence == 0 {
		return 0, io.EOF
	}

	k := min(len(left), s.silence)
	clear(left[:k])
	clear(right[:k])
	s.silence -= k

	return k, nil
}

// WAVSource streams a 16, 24 or 32-bit PCM WAV file. Mono files are copied
// to both channels; channels beyond the second are dropped.
type WAVSource struct {
	closer     io.Closer
	dec        *wav.Decoder
	buf        *audio.IntBuffer
	channels   int
	scale      float64
	sampleRate float64
}

// OpenWAV opens path as a WAVSource. Close releases the file.
func OpenWAV(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transfer: open input: %w", err)
	}

	src, err := NewWAVSource(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	src.closer = f

	return src, nil
}

// NewWAVSource reads the WAV header from r.
func NewWAVSource(r io.ReadSeeker) (*WAVSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("transfer: invalid WAV file")
	}

	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("transfer: unsupported WAV format %d, want PCM", dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("transfer: unsupported bit depth %d", bitDepth)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("transfer: invalid channel count %d", channels)
	}

	return &WAVSource{
		dec:        dec,
		buf:        &audio.IntBuffer{Format: dec.Format()},
		channels:   channels,
		scale:      1 / float64(int64(1)<<(bitDepth-1)),
		sampleRate: float64(dec.SampleRate),
	}, nil
}

func (s *WAVSource) SampleRate() float64 { return s.sampleRate }

// Channels returns the channel count of the file.
func (s *WAVSource) Channels() int { return s.channels }

// Frames estimates the length of the file in frames from the RIFF size, which
// also counts the header chunks. It is meant for progress display and is zero
// when the header does not say.
func (s *WAVSource) Frames() int {
	d, err := s.dec.Duration()
	if err != nil || d <= 0 {
		return 0
	}

	return int(math.Round(d.Seconds() * s.sampleRate))
}

func (s *WAVSource) ReadFrames(left, right []float64) (int, error) {
	if len(left) == 0 {
		return 0, nil
	}

	need := len(left) * s.channels
	if cap(s.buf.Data) < need {
		s.buf.Data = make([]int, need)
	}

	s.buf.Data = s.buf.Data[:need]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("transfer: read WAV: %w", err)
	}

	frames := n / s.channels
	if frames == 0 {
		return 0, io.EOF
	}

	data := s.buf.Data
	for i := range frames {
		l := float64(data[i*s.channels]) * s.scale
		r := l

		if s.channels > 1 {
			r = float64(data[i*s.channels+1]) * s.scale
		}

		left[i], right[i] = l, r
	}

	return frames, nil
}

// Close closes the file opened by OpenWAV.
func (s *WAVSource) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}
