package ui

import "github.com/cwbudde/algo-pedal/trace"

// ProgressMsg reports frames rendered so far and the scheduler timing.
type ProgressMsg struct {
	Frames  int
	Monitor trace.MonitorStats
}

// DoneMsg ends a render. Err is nil on success.
type DoneMsg struct {
	Frames int
	Err    error
}
