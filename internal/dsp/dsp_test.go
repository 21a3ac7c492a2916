package dsp

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHammingEndpoints(t *testing.T) {
	w := make([]float64, 8)
	Generate(w, 8, Hamming)
	if !almostEqual(w[0], hammingA0-hammingA1) {
		t.Fatalf("w[0] = %v, want %v", w[0], hammingA0-hammingA1)
	}
}

func TestHannEndpoints(t *testing.T) {
	w := make([]float64, 8)
	Generate(w, 8, Hann)
	if !almostEqual(w[0], 0) {
		t.Fatalf("w[0] = %v, want 0", w[0])
	}
}

func TestAmplitudePowerPhase(t *testing.T) {
	real := []float64{3, 0, -1}
	imag := []float64{4, 0, 0}
	amp := make([]float64, 3)
	power := make([]float64, 3)
	phase := make([]float64, 3)

	AmplitudeSpectrum(real, imag, amp)
	PowerSpectrum(real, imag, power)
	PhaseSpectrum(real, imag, phase)

	if !almostEqual(amp[0], 5) {
		t.Fatalf("amp[0] = %v, want 5", amp[0])
	}
	if !almostEqual(power[0], 25) {
		t.Fatalf("power[0] = %v, want 25", power[0])
	}
	if !almostEqual(phase[2], math.Pi) {
		t.Fatalf("phase[2] = %v, want Pi", phase[2])
	}
}

func TestSumSquares(t *testing.T) {
	if got := SumSquares([]float64{1, 2, 3}); !almostEqual(got, 14) {
		t.Fatalf("SumSquares = %v, want 14", got)
	}
}
