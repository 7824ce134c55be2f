// Package registry holds the biquad block kernels and picks one for the
// running CPU.
package registry

import (
	"slices"
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// Coefficients mirror biquad.Coefficients without importing it.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// KernelFn filters buf in place and returns the updated state taps.
type KernelFn func(c Coefficients, d0, d1 float64, buf []float64) (float64, float64)

// Kernel is one block implementation and the instruction set it needs.
type Kernel struct {
	Name     string
	Requires cpu.SIMDLevel
	Rank     int
	Run      KernelFn
}

// Table is a rank-ordered set of kernels.
type Table struct {
	mu      sync.Mutex
	kernels []Kernel
}

// Kernels is the table the biquad package selects from.
var Kernels = &Table{}

// Add inserts k, keeping higher ranks first. Kernels of equal rank keep
// their insertion order.
func (t *Table) Add(k Kernel) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.kernels = append(t.kernels, k)
	slices.SortStableFunc(t.kernels, func(a, b Kernel) int { return b.Rank - a.Rank })
}

// Select returns the best kernel the CPU supports.
func (t *Table) Select(features cpu.Features) (Kernel, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, k := range t.kernels {
		if cpu.Supports(features, k.Requires) {
			return k, true
		}
	}

	return Kernel{}, false
}

// Len returns the number of kernels added.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.kernels)
}
