// Package transfer emulates the audio interface around a block.Scheduler on
// a host machine.
//
// A device plays the part of the hardware transfer layer: it fills one half
// of the receive buffer, raises the matching completion callback and later
// drains the same half of the transmit buffer. FileDevice renders offline
// into a 24-bit WAV file. Stream does the same in real time as an io.Reader
// for an audio player; see the speaker subpackage.
package transfer
