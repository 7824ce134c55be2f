package transfer

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync/atomic"

	"github.com/tphakala/simd/f32"

	"github.com/cwbudde/algo-pedal/dsp/block"
	"github.com/cwbudde/algo-pedal/dsp/codec"
)

// BytesPerFrame is the size of one interleaved float32 stereo frame.
const BytesPerFrame = 8

// Stream is an io.Reader of interleaved little-endian float32 stereo that
// plays the transmit buffer in a loop, as the DAC side of the interface
// would. Each time a half has been played it refills the same half of the
// receive buffer from the source and raises the matching callback, so the
// consumer rewrites that half while the other one plays.
//
// Read is meant to be called from a single audio goroutine; the scheduler
// runs elsewhere.
type Stream struct {
	sched *block.Scheduler
	src   Source

	pos  int
	done atomic.Bool
	eof  chan struct{}

	left, right []float64
	l32, r32    []float32
	inter       []float32
}

// NewStream returns a stream over sched fed by src.
func NewStream(sched *block.Scheduler, src Source) *Stream {
	frames := sched.Frames()

	return &Stream{
		sched: sched,
		src:   src,
		eof:   make(chan struct{}),
		left:  make([]float64, frames),
		right: make([]float64, frames),
		l32:   make([]float32, frames),
		r32:   make([]float32, frames),
		inter: make([]float32, 2*frames),
	}
}

// Done is closed once the source has been exhausted.
func (s *Stream) Done() <-chan struct{} { return s.eof }

// Read fills p with whole frames. A trailing partial frame is left unused.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / BytesPerFrame
	half := s.sched.Frames()
	tx := s.sched.Tx()

	n := 0
	for n < frames {
		chunk := min(frames-n, half-s.pos%half)
		lo := s.pos * codec.WordsPerFrame

		codec.DecodeBlock(s.left[:chunk], s.right[:chunk], tx[lo:lo+chunk*codec.WordsPerFrame])

		for i := range chunk {
			s.l32[i] = float32(s.left[i])
			s.r32[i] = float32(s.right[i])
		}

		inter := s.inter[:2*chunk]
		f32.Interleave2(inter, s.l32[:chunk], s.r32[:chunk])

		out := p[n*BytesPerFrame:]
		for i, v := range inter {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
		}

		s.pos += chunk
		n += chunk

		switch s.pos {
		case half:
			s.complete(0)
		case 2 * half:
			s.complete(1)
			s.pos = 0
		}
	}

	return n * BytesPerFrame, nil
}

// complete refills receive half h and signals it.
func (s *Stream) complete(h int) {
	words := s.sched.BlockSize()
	rx := s.sched.Rx()[h*words : (h+1)*words]

	n := 0
	if !s.done.Load() {
		got, err := readFull(s.src, s.left, s.right)
		n = got

		if err != nil {
			if !errors.Is(err, io.EOF) {
				n = 0
			}

			s.done.Store(true)
			close(s.eof)
		}
	}

	clear(s.left[n:])
	clear(s.right[n:])

	codec.EncodeBlock(rx, s.left, s.right)

	if h == 0 {
		s.sched.OnHalfTransferComplete()
	} else {
		s.sched.OnFullTransferComplete()
	}
}
