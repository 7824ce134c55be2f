package effectchain

import "github.com/cwbudde/algo-pedal/dsp/effects"

// Runtime is the per-node processing and configuration contract. A chain
// holds one Runtime per channel and node, so implementations keep mono state.
type Runtime interface {
	Configure(ctx Context, params Params) error
	ProcessSample(x float64) float64
	Reset()
}

// BlockRuntime is a Runtime that can also process a whole buffer in place.
// The chain prefers it over per-sample calls; the result must be the same.
type BlockRuntime interface {
	Runtime
	ProcessBlock(buf []float64)
}

// StageReporter is a Runtime with fixed filter sections whose coefficients
// can be inspected, such as the overdrive EQ.
type StageReporter interface {
	Stages() []effects.Stage
}
