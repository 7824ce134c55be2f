package delay

import "fmt"

// Line is a circular delay line with a fixed capacity and a shorter or equal
// active length. The index always wraps at the active length, so shortening
// the line never reallocates.
//
// Tap returns the sample written Len() pushes ago; Push stores a new sample in
// that slot and advances. A single-tap feedback delay therefore reads with Tap
// before writing with Push.
type Line struct {
	buffer []float64
	length int
	pos    int
}

// New returns a delay line with the given capacity. The active length starts
// at the full capacity.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}

	return &Line{
		buffer: make([]float64, capacity),
		length: capacity,
	}, nil
}

// Cap returns the static buffer capacity.
func (d *Line) Cap() int {
	return len(d.buffer)
}

// Len returns the active length in samples.
func (d *Line) Len() int {
	return d.length
}

// Pos returns the current read/write index, always in [0, Len()).
func (d *Line) Pos() int {
	return d.pos
}

// SetLength changes the active length, clamped to [1, Cap()]. History is kept;
// an index beyond the new length wraps to 0. Lengthening the line again
// replays whatever the untouched region still holds.
func (d *Line) SetLength(n int) {
	if n < 1 {
		n = 1
	}

	if n > len(d.buffer) {
		n = len(d.buffer)
	}

	d.length = n
	if d.pos >= n {
		d.pos = 0
	}
}

// Tap reads the sample at the current index.
func (d *Line) Tap() float64 {
	return d.buffer[d.pos]
}

// Peek reads the sample offset slots ahead of the current index, wrapping at
// Len(). Peek(0) equals Tap.
func (d *Line) Peek(offset int) float64 {
	i := (d.pos + offset) % d.length
	if i < 0 {
		i += d.length
	}

	return d.buffer[i]
}

// Push writes sample at the current index and advances, wrapping at Len().
func (d *Line) Push(sample float64) {
	d.buffer[d.pos] = sample

	d.pos++
	if d.pos >= d.length {
		d.pos = 0
	}
}

// Reset clears the whole buffer and rewinds the index. The active length is
// kept.
func (d *Line) Reset() {
	clear(d.buffer)
	d.pos = 0
}
