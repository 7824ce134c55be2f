package block

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-pedal/dsp/codec"
	"github.com/cwbudde/algo-pedal/dsp/effectchain"
	"github.com/cwbudde/algo-pedal/trace"
)

// DefaultUpdateQueue is the number of parameter updates that can wait for
// the consumer when Config.UpdateQueue is zero.
const DefaultUpdateQueue = 16

var (
	// ErrBlockSize is returned when the block size is not a positive multiple of 4.
	ErrBlockSize = errors.New("block size must be a positive multiple of 4")
	// ErrNoChain is returned when no processor is configured.
	ErrNoChain = errors.New("no processor configured")
)

// Processor runs a stereo block and accepts parameter updates.
// [effectchain.Chain] implements it.
type Processor interface {
	ProcessBlock(dstL, dstR, srcL, srcR []float64)
	Configure(index int, params effectchain.Params) error
}

// Config describes a Scheduler.
type Config struct {
	// BlockSize is N, the number of 16-bit wire words in one half.
	BlockSize int
	// Chain processes every half-block.
	Chain Processor
	// Sink is notified at the start and end of each pass. Nil means none.
	Sink trace.Sink
	// UpdateQueue bounds pending parameter updates. Zero selects
	// DefaultUpdateQueue.
	UpdateQueue int
	// OnUpdateError, if set, is called on the consumer when a queued update
	// is rejected by the chain.
	OnUpdateError func(index int, err error)
}

// Stats are diagnostic counters.
type Stats struct {
	// Passes is the number of half-blocks processed.
	Passes uint64
	// Coalesced counts signals that arrived while another was pending.
	Coalesced uint64
	// UpdatesDropped counts Update calls rejected because the queue was full.
	UpdatesDropped uint64
	// UpdateErrors counts queued updates the chain rejected.
	UpdateErrors uint64
}

type update struct {
	index  int
	params effectchain.Params
}

// Scheduler owns the wire and float buffers and drives one chain pass per
// ready half. All buffers are allocated in New; passes do not allocate.
type Scheduler struct {
	n int

	flag Flag
	wake chan struct{}

	rx, tx      []uint16
	left, right []float64

	chain         Processor
	sink          trace.Sink
	updates       chan update
	onUpdateError func(int, error)

	pass uint64

	passes         atomic.Uint64
	coalesced      atomic.Uint64
	updatesDropped atomic.Uint64
	updateErrors   atomic.Uint64
}

// New allocates a scheduler for cfg.
func New(cfg Config) (*Scheduler, error) {
	if cfg.BlockSize <= 0 || cfg.BlockSize%codec.WordsPerFrame != 0 {
		return nil, fmt.Errorf("block: %w: %d", ErrBlockSize, cfg.BlockSize)
	}

	if cfg.Chain == nil {
		return nil, fmt.Errorf("block: %w", ErrNoChain)
	}

	sink := cfg.Sink
	if sink == nil {
		sink = trace.Nop{}
	}

	queue := cfg.UpdateQueue
	if queue <= 0 {
		queue = DefaultUpdateQueue
	}

	n := cfg.BlockSize
	frames := n / codec.WordsPerFrame

	return &Scheduler{
		n:             n,
		wake:          make(chan struct{}, 1),
		rx:            make([]uint16, 2*n),
		tx:            make([]uint16, 2*n),
		left:          make([]float64, 2*frames),
		right:         make([]float64, 2*frames),
		chain:         cfg.Chain,
		sink:          sink,
		updates:       make(chan update, queue),
		onUpdateError: cfg.OnUpdateError,
	}, nil
}

// BlockSize returns N, the number of wire words per half.
func (s *Scheduler) BlockSize() int { return s.n }

// Frames returns the number of stereo frames per half.
func (s *Scheduler) Frames() int { return s.n / codec.WordsPerFrame }

// Rx returns the receive wire buffer the transfer layer fills. Its address
// and length never change.
func (s *Scheduler) Rx() []uint16 { return s.rx }

// Tx returns the transmit wire buffer the transfer layer drains.
func (s *Scheduler) Tx() []uint16 { return s.tx }

// Pending returns the state waiting to be processed.
func (s *Scheduler) Pending() State { return s.flag.Load() }

// OnHalfTransferComplete marks the first half of Rx as filled. It is O(1)
// and never blocks.
func (s *Scheduler) OnHalfTransferComplete() {
	s.signal(HalfReady)
}

// OnFullTransferComplete marks the second half of Rx as filled. It is O(1)
// and never blocks.
func (s *Scheduler) OnFullTransferComplete() {
	s.signal(FullReady)
}

func (s *Scheduler) signal(state State) {
	if s.flag.Signal(state) != Idle {
		s.coalesced.Add(1)
	}

	s.notify()
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Update queues a parameter change for the chain node at index. It never
// blocks and returns false when the queue is full. Updates are applied by
// the consumer before its next pass, never during one.
func (s *Scheduler) Update(index int, params effectchain.Params) bool {
	select {
	case s.updates <- update{index: index, params: params}:
		s.notify()

		return true
	default:
		s.updatesDropped.Add(1)

		return false
	}
}

// Poll applies queued updates, then processes the pending half if there is
// one. It returns whether a pass ran. Poll must only be called from the
// consumer.
func (s *Scheduler) Poll() bool {
	s.applyUpdates()

	state := s.flag.Load()
	if state == Idle {
		return false
	}

	s.process(state)
	s.flag.Clear(state)

	return true
}

// Run processes halves as they are signalled until ctx is cancelled, then
// returns ctx.Err(). It parks on the wake channel while idle.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		for s.Poll() {
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

// Stats returns the diagnostic counters. Safe from any goroutine.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Passes:         s.passes.Load(),
		Coalesced:      s.coalesced.Load(),
		UpdatesDropped: s.updatesDropped.Load(),
		UpdateErrors:   s.updateErrors.Load(),
	}
}

func (s *Scheduler) applyUpdates() {
	for {
		select {
		case u := <-s.updates:
			err := s.chain.Configure(u.index, u.params)
			if err != nil {
				s.updateErrors.Add(1)

				if s.onUpdateError != nil {
					s.onUpdateError(u.index, err)
				}
			}
		default:
			return
		}
	}
}

// process decodes one half of Rx, runs the chain in place and encodes the
// result into the same half of Tx.
func (s *Scheduler) process(state State) {
	half := trace.First
	wireLo := 0

	if state == FullReady {
		half = trace.Second
		wireLo = s.n
	}

	frames := s.Frames()
	floatLo := wireLo / codec.WordsPerFrame

	left := s.left[floatLo : floatLo+frames]
	right := s.right[floatLo : floatLo+frames]
	rx := s.rx[wireLo : wireLo+s.n]
	tx := s.tx[wireLo : wireLo+s.n]

	s.pass++
	s.sink.PassStart(s.pass, half)

	codec.DecodeBlock(left, right, rx)
	s.chain.ProcessBlock(left, right, left, right)
	codec.EncodeBlock(tx, left, right)

	s.sink.PassEnd(s.pass)
	s.passes.Add(1)
}
