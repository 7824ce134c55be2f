// Package core holds small numeric helpers shared by the effect units.
package core
