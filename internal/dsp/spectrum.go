package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// AmplitudeSpectrum computes sqrt(real^2 + imag^2) per bin into amp.
func AmplitudeSpectrum(real, imag, amp []float64) {
	for i := range real {
		amp[i] = math.Sqrt(real[i]*real[i] + imag[i]*imag[i])
	}
}

// PowerSpectrum computes real^2 + imag^2 per bin into power.
func PowerSpectrum(real, imag, power []float64) {
	for i := range real {
		power[i] = real[i]*real[i] + imag[i]*imag[i]
	}
}

// PhaseSpectrum computes atan2(imag, real) per bin into phase.
func PhaseSpectrum(real, imag, phase []float64) {
	for i := range real {
		phase[i] = math.Atan2(imag[i], real[i])
	}
}

// SumSquares returns the dot product of x with itself, used by the
// spectral-subtraction suppressor's global posterior-SNR calculation and by
// the gain-shaping mean-gain normalization.
func SumSquares(x []float64) float64 {
	return floats.Dot(x, x)
}
