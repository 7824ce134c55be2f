package effects

// Effect is the per-sample capability shared by all units.
type Effect interface {
	ProcessSample(x float64) float64
	Reset()
}

var (
	_ Effect = (*Delay)(nil)
	_ Effect = (*Reverb)(nil)
	_ Effect = (*SpringReverb)(nil)
	_ Effect = (*Overdrive)(nil)
)

// BlockEffect is an Effect that also processes whole buffers in place.
type BlockEffect interface {
	Effect
	ProcessInPlace(buf []float64)
}

var (
	_ BlockEffect = (*Delay)(nil)
	_ BlockEffect = (*Reverb)(nil)
	_ BlockEffect = (*SpringReverb)(nil)
	_ BlockEffect = (*Overdrive)(nil)
)

// ProcessInPlace runs buf through fx, a block at a time when fx supports it.
func ProcessInPlace(fx Effect, buf []float64) {
	if b, ok := fx.(BlockEffect); ok {
		b.ProcessInPlace(buf)

		return
	}

	for i := range buf {
		buf[i] = fx.ProcessSample(buf[i])
	}
}
