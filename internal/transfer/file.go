package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-pedal/dsp/block"
	"github.com/cwbudde/algo-pedal/dsp/codec"
)

// OutputBitDepth is the sample width written by FileDevice, the full wire
// resolution.
const OutputBitDepth = 24

const wavFormatPCM = 1

// FileOption configures a FileDevice.
type FileOption func(*FileDevice)

// WithTail appends frames of silence after the source ends so delay and
// reverb tails are rendered.
func WithTail(frames int) FileOption {
	return func(d *FileDevice) {
		d.tail = max(frames, 0)
	}
}

// WithProgress registers fn, called after every half with the number of
// frames written so far.
func WithProgress(fn func(frames int)) FileOption {
	return func(d *FileDevice) {
		d.progress = fn
	}
}

// FileDevice drives a scheduler from a Source and writes the transmit buffer
// to a WAV stream. It processes synchronously: every half is filled,
// signalled, drained by Poll and written before the next one starts.
type FileDevice struct {
	sched    *block.Scheduler
	src      Source
	enc      *wav.Encoder
	tail     int
	progress func(int)

	left, right []float64
	out         *audio.IntBuffer
}

// NewFileDevice writes stereo 24-bit PCM at the source's sample rate to w.
// Close must be called to finish the WAV header.
func NewFileDevice(sched *block.Scheduler, src Source, w io.WriteSeeker, opts ...FileOption) *FileDevice {
	frames := sched.Frames()
	rate := int(src.SampleRate())

	d := &FileDevice{
		sched: sched,
		src:   src,
		enc:   wav.NewEncoder(w, rate, OutputBitDepth, 2, wavFormatPCM),
		left:  make([]float64, frames),
		right: make([]float64, frames),
		out: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
			Data:           make([]int, 2*frames),
			SourceBitDepth: OutputBitDepth,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Run renders until the source and the tail are exhausted or ctx is done.
// It returns the number of frames written.
func (d *FileDevice) Run(ctx context.Context) (int, error) {
	frames := d.sched.Frames()
	words := d.sched.BlockSize()
	rx, tx := d.sched.Rx(), d.sched.Tx()

	written := 0
	tail := d.tail
	srcDone := false

	for half := 0; ; half ^= 1 {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n := 0

		if !srcDone {
			got, err := readFull(d.src, d.left, d.right)
			n = got

			switch {
			case errors.Is(err, io.EOF):
				srcDone = true
			case err != nil:
				return written, err
			}
		}

		clear(d.left[n:])
		clear(d.right[n:])

		if srcDone && n < frames {
			pad := min(frames-n, tail)
			tail -= pad
			n += pad
		}

		if n == 0 {
			return written, nil
		}

		lo := half * words
		codec.EncodeBlock(rx[lo:lo+words], d.left, d.right)

		if half == 0 {
			d.sched.OnHalfTransferComplete()
		} else {
			d.sched.OnFullTransferComplete()
		}

		for d.sched.Poll() {
		}

		err := d.write(tx[lo:lo+n*codec.WordsPerFrame], n)
		if err != nil {
			return written, err
		}

		written += n

		if d.progress != nil {
			d.progress(written)
		}
	}
}

// Close finalizes the WAV header. It does not close the underlying writer.
func (d *FileDevice) Close() error {
	err := d.enc.Close()
	if err != nil {
		return fmt.Errorf("transfer: finish WAV: %w", err)
	}

	return nil
}

func (d *FileDevice) write(wire []uint16, frames int) error {
	data := d.out.Data[:2*frames]

	for i := range frames {
		f := wire[i*codec.WordsPerFrame:]
		data[2*i] = int(codec.UnpackInt24(f[0], f[1]))
		data[2*i+1] = int(codec.UnpackInt24(f[2], f[3]))
	}

	buf := *d.out
	buf.Data = data

	err := d.enc.Write(&buf)
	if err != nil {
		return fmt.Errorf("transfer: write WAV: %w", err)
	}

	return nil
}

// readFull reads until left is full or the source ends.
func readFull(src Source, left, right []float64) (int, error) {
	n := 0

	for n < len(left) {
		got, err := src.ReadFrames(left[n:], right[n:])
		n += got

		if err != nil {
			return n, err
		}

		if got == 0 {
			return n, io.EOF
		}
	}

	return n, nil
}
