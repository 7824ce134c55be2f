package biquad

import "math"

// MagnitudeSquared returns |H|^2 at freqHz, evaluated on the unit circle in
// closed form.
func (c Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	cw := math.Cos(2 * math.Pi * freqHz / sampleRate)

	// |B0 + B1 z^-1 + B2 z^-2|^2 expanded with z = e^jw.
	num := c.B0*c.B0 + c.B1*c.B1 + c.B2*c.B2 +
		2*(c.B0*c.B1+c.B1*c.B2)*cw + 2*c.B0*c.B2*(2*cw*cw-1)
	den := 1 + c.A1*c.A1 + c.A2*c.A2 +
		2*(c.A1+c.A1*c.A2)*cw + 2*c.A2*(2*cw*cw-1)

	return num / den
}

// MagnitudeDB returns the gain at freqHz in dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freqHz, sampleRate))
}

// Stable reports whether both poles are strictly inside the unit circle.
func (c Coefficients) Stable() bool {
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}
