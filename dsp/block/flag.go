package block

import "sync/atomic"

// State is the hand-off token between producer and consumer.
type State uint32

const (
	// Idle means no half is waiting to be processed.
	Idle State = iota
	// HalfReady means the first half of the receive buffer was filled.
	HalfReady
	// FullReady means the second half of the receive buffer was filled.
	FullReady
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HalfReady:
		return "half"
	case FullReady:
		return "full"
	default:
		return "invalid"
	}
}

// Flag holds at most one pending State. The zero value is Idle.
type Flag struct {
	v atomic.Uint32
}

// Load returns the pending state.
func (f *Flag) Load() State {
	return State(f.v.Load())
}

// Signal stores s and returns the state it replaced. A non-Idle return
// means an earlier signal was still pending and has been overwritten.
func (f *Flag) Signal(s State) State {
	return State(f.v.Swap(uint32(s)))
}

// Clear resets the flag to Idle only if it still holds s, so a signal that
// arrived while s was being processed survives.
func (f *Flag) Clear(s State) bool {
	return f.v.CompareAndSwap(uint32(s), uint32(Idle))
}
