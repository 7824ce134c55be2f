// Package codec converts between the wire PCM layout and normalized float
// samples.
//
// A stereo frame is four 16-bit words, [Lhi, Llo, Rhi, Rlo]. Each channel is
// a signed 24-bit value left-justified in 32 bits (the low byte is zero),
// most significant word first.
package codec

import "math"

const (
	// WordsPerFrame is the number of wire words in one stereo frame.
	WordsPerFrame = 4

	// MaxInt24 and MinInt24 bound a signed 24-bit sample.
	MaxInt24 = 1<<23 - 1
	MinInt24 = -1 << 23

	decodeScale = 1.0 / (1 << 23)
	encodeScale = float64(MaxInt24)
)

// UnpackInt24 joins a word pair into the sign-extended 24-bit integer.
func UnpackInt24(hi, lo uint16) int32 {
	return int32(uint32(hi)<<16|uint32(lo)) >> 8
}

// PackInt24 left-justifies v into 32 bits and splits it into a word pair.
// v is clamped to the 24-bit range first.
func PackInt24(v int32) (hi, lo uint16) {
	if v > MaxInt24 {
		v = MaxInt24
	} else if v < MinInt24 {
		v = MinInt24
	}

	u := uint32(v) << 8

	return uint16(u >> 16), uint16(u)
}

// Decode converts a word pair to a float in [-1, 1).
func Decode(hi, lo uint16) float64 {
	return float64(UnpackInt24(hi, lo)) * decodeScale
}

// Encode clamps x to [-1, 1], scales by 2^23-1, rounds half away from zero
// and packs the result. NaN encodes as silence.
func Encode(x float64) (hi, lo uint16) {
	return PackInt24(Quantize(x))
}

// Quantize is the integer half of Encode.
func Quantize(x float64) int32 {
	switch {
	case math.IsNaN(x):
		return 0
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}

	return int32(math.Round(x * encodeScale))
}

// DecodeFrame decodes one stereo frame. frame must hold at least
// WordsPerFrame words.
func DecodeFrame(frame []uint16) (left, right float64) {
	_ = frame[3]

	return Decode(frame[0], frame[1]), Decode(frame[2], frame[3])
}

// EncodeFrame encodes one stereo frame into frame[0:4].
func EncodeFrame(frame []uint16, left, right float64) {
	_ = frame[3]

	frame[0], frame[1] = Encode(left)
	frame[2], frame[3] = Encode(right)
}

// DecodeBlock decodes len(left) frames from wire into left and right.
// It panics unless len(wire) == 4*len(left) == 4*len(right).
func DecodeBlock(left, right []float64, wire []uint16) {
	checkBlock(len(left), len(right), len(wire))

	for i := range left {
		left[i], right[i] = DecodeFrame(wire[i*WordsPerFrame:])
	}
}

// EncodeBlock encodes left and right into wire. The length contract is the
// same as for DecodeBlock.
func EncodeBlock(wire []uint16, left, right []float64) {
	checkBlock(len(left), len(right), len(wire))

	for i := range left {
		EncodeFrame(wire[i*WordsPerFrame:], left[i], right[i])
	}
}

func checkBlock(nl, nr, nw int) {
	if nl != nr || nw != nl*WordsPerFrame {
		panic("codec: block length mismatch")
	}
}
