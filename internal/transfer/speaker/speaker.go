//go:build !headless

package speaker

import (
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-pedal/dsp/block"
	"github.com/cwbudde/algo-pedal/internal/transfer"
)

// DefaultBuffer is the device buffer requested from the driver.
const DefaultBuffer = 20 * time.Millisecond

// Device plays a Stream through the default audio output while the
// scheduler runs on its own goroutine.
type Device struct {
	ctx    *oto.Context
	stream *transfer.Stream
	sched  *block.Scheduler
	buffer time.Duration
}

// NewDevice opens the audio output at the source's sample rate. Only one
// device may exist per process.
func NewDevice(sched *block.Scheduler, src transfer.Source, buffer time.Duration) (*Device, error) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(src.SampleRate()),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("speaker: open audio output: %w", err)
	}
	<-ready

	return &Device{
		ctx:    octx,
		stream: transfer.NewStream(sched, src),
		sched:  sched,
		buffer: buffer,
	}, nil
}

// Run plays until the source ends or ctx is done. The scheduler is stopped
// before Run returns.
func (d *Device) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedDone := make(chan error, 1)

	go func() { schedDone <- d.sched.Run(runCtx) }()

	player := d.ctx.NewPlayer(d.stream)
	player.Play()

	var err error

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-d.stream.Done():
		// Let the device play out what it has buffered.
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(2 * d.buffer):
		}
	}

	closeErr := player.Close()

	cancel()
	<-schedDone

	if err == nil && closeErr != nil {
		err = fmt.Errorf("speaker: close player: %w", closeErr)
	}

	return err
}
