package suppressor

import (
	"math"
	"testing"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestAllModesConfigureAndRun(t *testing.T) {
	modes := []Mode{SpecSub, Wiener, TSNR, TSNRGain, RTSNR, RTSNRGain}
	for _, m := range modes {
		s := New()
		if err := s.Configure(16000, 256, m); err != nil {
			t.Fatalf("mode %v: Configure: %v", m, err)
		}
		noisy := flat(256, 1.0)
		noise := flat(256, 0.1)
		s.Run(noisy, noise)
		for i, v := range s.SpeechAmpSpec {
			if math.IsNaN(v) {
				t.Fatalf("mode %v: SpeechAmpSpec[%d] is NaN", m, i)
			}
		}
	}
}

func TestInvalidMode(t *testing.T) {
	s := New()
	if err := s.Configure(16000, 256, Mode(99)); err != ErrInvalidMode {
		t.Fatalf("Configure invalid mode = %v, want ErrInvalidMode", err)
	}
}

func TestSpecSubSubtractsDominantNoise(t *testing.T) {
	s := New()
	if err := s.Configure(16000, 64, SpecSub); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	noisy := flat(64, 10.0)
	noise := flat(64, 9.0)
	s.Run(noisy, noise)
	for i, v := range s.SpeechAmpSpec {
		if v >= noisy[i] {
			t.Errorf("SpeechAmpSpec[%d] = %v, want < noisy %v", i, v, noisy[i])
		}
	}
}

func TestWienerGainWithinUnitRange(t *testing.T) {
	w := New()
	if err := w.Configure(16000, 32, Wiener); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	noisy := flat(32, 5.0)
	noise := flat(32, 1.0)
	w.Run(noisy, noise)
	for i, v := range w.SpeechAmpSpec {
		if v < 0 || v > noisy[i] {
			t.Errorf("SpeechAmpSpec[%d] = %v, want in [0, %v]", i, v, noisy[i])
		}
	}
}
