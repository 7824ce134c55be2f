// Package design computes biquad coefficients for the EQ stages of the
// effect units.
//
// Designers follow the RBJ audio EQ cookbook. Cutoffs at or above
// MaxCutoffRatio of the sample rate, and non-positive cutoffs, degrade to the
// exact unity section instead of producing a filter that is numerically
// fragile near Nyquist.
package design
