// Package dsp provides the window functions and spectral utilities shared
// by the DFT engine, the noise estimator, and the suppressors.
package dsp

import "math"

// WindowType selects which analysis window Generate fills.
type WindowType int

const (
	// Hamming is the default window used by every internal component that
	// does not explicitly request Hann.
	Hamming WindowType = iota
	Hann
)

const (
	hammingA0 = 0.538360
	hammingA1 = 0.461640
)

// Generate fills window with n samples of the requested type. Both windows
// are periodic (divide the angle by n, not n-1) to match the reference
// implementation's framing convention.
func Generate(window []float64, n int, wt WindowType) {
	switch wt {
	case Hann:
		for i := 0; i < n; i++ {
			window[i] = hann(i, n)
		}
	default:
		for i := 0; i < n; i++ {
			window[i] = hamming(i, n)
		}
	}
}

func hamming(i, n int) float64 {
	return hammingA0 - hammingA1*math.Cos(2.0*math.Pi*(float64(i)/float64(n)))
}

func hann(i, n int) float64 {
	return 0.5 - 0.5*math.Cos(2.0*math.Pi*(float64(i)/float64(n)))
}

// Apply multiplies in by window elementwise into out. out and in may
// overlap exactly (out == in).
func Apply(window, in, out []float64) {
	for i := range in {
		out[i] = in[i] * window[i]
	}
}
