// Package trace is the observational hook a block scheduler notifies at the
// start and end of every processing pass.
//
// Sinks are called on the consumer goroutine, inside the pass. They must not
// block and should not allocate.
package trace

// Half identifies which half of the transfer buffers a pass drains.
type Half uint8

const (
	// First is the half signalled by the half-transfer callback.
	First Half = iota
	// Second is the half signalled by the full-transfer callback.
	Second
)

func (h Half) String() string {
	if h == First {
		return "first"
	}

	return "second"
}

// Sink receives pass start/end notifications. pass increases by one per
// processed half-block, starting at 1.
type Sink interface {
	PassStart(pass uint64, half Half)
	PassEnd(pass uint64)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) PassStart(uint64, Half) {}
func (Nop) PassEnd(uint64)         {}

// Multi fans notifications out to several sinks in order.
type Multi []Sink

func (m Multi) PassStart(pass uint64, half Half) {
	for _, s := range m {
		s.PassStart(pass, half)
	}
}

func (m Multi) PassEnd(pass uint64) {
	for _, s := range m {
		s.PassEnd(pass)
	}
}
