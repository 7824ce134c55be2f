// Package effects provides the mono effect units of the pedal: a feedback
// delay, a Schroeder reverb, a spring reverb and an overdrive with
// selectable waveshapers.
//
// Every unit allocates its buffers in the constructor. ProcessSample never
// allocates, never returns an error and clamps or sanitizes out-of-range
// runtime parameters instead of rejecting them. Stereo processing uses one
// unit per channel.
package effects
