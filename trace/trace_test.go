package trace

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	starts []uint64
	halves []Half
	ends   []uint64
}

func (r *recordingSink) PassStart(pass uint64, half Half) {
	r.starts = append(r.starts, pass)
	r.halves = append(r.halves, half)
}

func (r *recordingSink) PassEnd(pass uint64) {
	r.ends = append(r.ends, pass)
}

// fakeClock advances by the queued durations on every call.
type fakeClock struct {
	t     time.Time
	steps []time.Duration
}

func (c *fakeClock) now() time.Time {
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}

	return c.t
}

func TestMonitorCountsOverruns(t *testing.T) {
	rec := &recordingSink{}
	m := NewMonitor(time.Millisecond, rec)

	clock := &fakeClock{
		t: time.Unix(0, 0),
		// start, end pairs: 0.4 ms, 1.5 ms, 0.9 ms passes.
		steps: []time.Duration{
			0, 400 * time.Microsecond,
			time.Millisecond, 1500 * time.Microsecond,
			time.Millisecond, 900 * time.Microsecond,
		},
	}
	m.now = clock.now

	for pass := uint64(1); pass <= 3; pass++ {
		half := First
		if pass%2 == 0 {
			half = Second
		}

		m.PassStart(pass, half)
		m.PassEnd(pass)
	}

	st := m.Stats()
	assert.Equal(t, uint64(3), st.Passes)
	assert.Equal(t, uint64(1), st.Overruns)
	assert.Equal(t, 900*time.Microsecond, st.Last)
	assert.Equal(t, 1500*time.Microsecond, st.Worst)
	assert.InDelta(t, 1.5, st.Load(), 1e-12)

	assert.Equal(t, []uint64{1, 2, 3}, rec.starts)
	assert.Equal(t, []Half{First, Second, First}, rec.halves)
	assert.Equal(t, []uint64{1, 2, 3}, rec.ends)
}

// slowSink advances the clock whenever it is notified.
type slowSink struct {
	clock *fakeClock
	cost  time.Duration
}

func (s *slowSink) PassStart(uint64, Half) { s.clock.t = s.clock.t.Add(s.cost) }

func (s *slowSink) PassEnd(uint64) { s.clock.t = s.clock.t.Add(s.cost) }

func TestMonitorExcludesSinkTime(t *testing.T) {
	clock := &fakeClock{
		t:     time.Unix(0, 0),
		steps: []time.Duration{0, 600 * time.Microsecond},
	}

	m := NewMonitor(time.Millisecond, &slowSink{clock: clock, cost: 5 * time.Millisecond})
	m.now = clock.now

	m.PassStart(1, First)
	m.PassEnd(1)

	st := m.Stats()
	assert.Zero(t, st.Overruns)
	assert.Equal(t, 600*time.Microsecond, st.Last)
}

func TestBlockPeriod(t *testing.T) {
	assert.Equal(t, 32*time.Millisecond/48, BlockPeriod(32, 48000))
	assert.Equal(t, time.Duration(0), BlockPeriod(32, 0))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	s := NewLogSink(logger)

	s.PassStart(1, First)
	s.PassEnd(1)
	require.Zero(t, buf.Len(), "info level must not log passes")

	logger.SetLevel(logrus.DebugLevel)
	s.PassStart(7, Second)
	s.PassEnd(7)

	out := buf.String()
	assert.Contains(t, out, "pass start")
	assert.Contains(t, out, "pass end")
	assert.Contains(t, out, "pass=7")
	assert.Contains(t, out, "half=second")
}

func TestMultiAndNop(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi{a, Nop{}, b}

	m.PassStart(4, Second)
	m.PassEnd(4)

	for _, r := range []*recordingSink{a, b} {
		assert.Equal(t, []uint64{4}, r.starts)
		assert.Equal(t, []uint64{4}, r.ends)
	}
}
