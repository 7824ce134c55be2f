// Package generic adds the portable biquad block kernels.
package generic

import (
	"github.com/cwbudde/algo-pedal/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Kernels.Add(registry.Kernel{Name: "scalar", Requires: cpu.SIMDNone, Run: scalar})

	// Four independent loads and stores per iteration keep the FP ports of
	// SSE2 and NEON class cores busy. The recursion itself stays serial.
	registry.Kernels.Add(registry.Kernel{Name: "unrolled4", Requires: cpu.SIMDSSE2, Rank: 10, Run: unrolled4})
	registry.Kernels.Add(registry.Kernel{Name: "unrolled4-neon", Requires: cpu.SIMDNEON, Rank: 10, Run: unrolled4})
}

func scalar(c registry.Coefficients, d0, d1 float64, buf []float64) (float64, float64) {
	for i, x := range buf {
		y := c.B0*x + d0
		d0 = c.B1*x - c.A1*y + d1
		d1 = c.B2*x - c.A2*y
		buf[i] = y
	}

	return d0, d1
}

func unrolled4(c registry.Coefficients, d0, d1 float64, buf []float64) (float64, float64) {
	b0, b1, b2, a1, a2 := c.B0, c.B1, c.B2, c.A1, c.A2

	n := len(buf) &^ 3
	for i := 0; i < n; i += 4 {
		blk := buf[i : i+4 : i+4]

		x0, x1, x2, x3 := blk[0], blk[1], blk[2], blk[3]

		y0 := b0*x0 + d0
		d0 = b1*x0 - a1*y0 + d1
		d1 = b2*x0 - a2*y0

		y1 := b0*x1 + d0
		d0 = b1*x1 - a1*y1 + d1
		d1 = b2*x1 - a2*y1

		y2 := b0*x2 + d0
		d0 = b1*x2 - a1*y2 + d1
		d1 = b2*x2 - a2*y2

		y3 := b0*x3 + d0
		d0 = b1*x3 - a1*y3 + d1
		d1 = b2*x3 - a2*y3

		blk[0], blk[1], blk[2], blk[3] = y0, y1, y2, y3
	}

	return scalar(c, d0, d1, buf[n:])
}
