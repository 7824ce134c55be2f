// Package delay provides the fixed-capacity circular buffer used by the
// delay and reverb units.
package delay
