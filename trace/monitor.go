package trace

import (
	"sync/atomic"
	"time"
)

// Monitor measures each pass against the block period and counts overruns.
// A pass longer than the period means the transfer layer re-used a half the
// consumer had not finished, which is heard as a glitch.
//
// Counters are atomic, so Stats may be read from any goroutine.
type Monitor struct {
	period time.Duration
	next   Sink
	now    func() time.Time

	start time.Time

	passes   atomic.Uint64
	overruns atomic.Uint64
	last     atomic.Int64
	worst    atomic.Int64
}

// MonitorStats is a snapshot of a Monitor.
type MonitorStats struct {
	Passes   uint64
	Overruns uint64
	Last     time.Duration
	Worst    time.Duration
	Period   time.Duration
}

// Load returns Worst as a fraction of Period.
func (s MonitorStats) Load() float64 {
	if s.Period <= 0 {
		return 0
	}

	return float64(s.Worst) / float64(s.Period)
}

// NewMonitor returns a monitor for the given deadline. next, if non-nil,
// receives every notification outside the timed interval, so a slow sink
// does not count against the deadline.
func NewMonitor(period time.Duration, next Sink) *Monitor {
	if next == nil {
		next = Nop{}
	}

	return &Monitor{period: period, next: next, now: time.Now}
}

// BlockPeriod is the time one half-block of frames lasts at sampleRate.
func BlockPeriod(frames int, sampleRate float64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}

func (m *Monitor) PassStart(pass uint64, half Half) {
	m.next.PassStart(pass, half)
	m.start = m.now()
}

func (m *Monitor) PassEnd(pass uint64) {
	d := m.now().Sub(m.start)

	m.passes.Add(1)
	m.last.Store(int64(d))

	if int64(d) > m.worst.Load() {
		m.worst.Store(int64(d))
	}

	if m.period > 0 && d > m.period {
		m.overruns.Add(1)
	}

	m.next.PassEnd(pass)
}

// Stats returns the current counters.
func (m *Monitor) Stats() MonitorStats {
	return MonitorStats{
		Passes:   m.passes.Load(),
		Overruns: m.overruns.Load(),
		Last:     time.Duration(m.last.Load()),
		Worst:    time.Duration(m.worst.Load()),
		Period:   m.period,
	}
}
