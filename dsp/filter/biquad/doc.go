// Package biquad provides the second-order IIR section shared by every EQ
// stage of the effects core.
//
// A [Section] implements Direct Form II Transposed processing for a single
// section defined by [Coefficients]. [Unity] yields an exact bypass, which is
// how disabled EQ stages are realized without branching in the sample loop.
//
// This package provides the processing runtime only. Coefficient design
// (RBJ low-pass/high-pass) lives in dsp/filter/design.
package biquad
