// Package suppressor implements the six interchangeable speech-noise
// suppression strategies: Berouti-Schwartz spectral subtraction,
// Scalart-Filho decision-directed Wiener filtering, Scalart two-step noise
// reduction (with an optional Scalart-Plapous gain-shaping pass) and its
// Shifeng RTSNR variant.
package suppressor

import (
	"errors"
	"math"

	"github.com/speechden/hsv/internal/dft"
	"github.com/speechden/hsv/internal/dsp"
)

// Mode selects which suppression strategy a Suppressor runs.
type Mode int

const (
	SpecSub Mode = iota
	Wiener
	TSNR
	TSNRGain
	RTSNR
	RTSNRGain
)

// ErrInvalidMode is returned by Configure for an out-of-range Mode.
var ErrInvalidMode = errors.New("suppressor: invalid mode")

// String returns the canonical lowercase name for a Mode, suitable for use
// as a metrics label or config value. Unknown modes return "unknown".
func (m Mode) String() string {
	switch m {
	case SpecSub:
		return "specsub"
	case Wiener:
		return "wiener"
	case TSNR:
		return "tsnr"
	case TSNRGain:
		return "tsnrg"
	case RTSNR:
		return "rtsnr"
	case RTSNRGain:
		return "rtsnrg"
	default:
		return "unknown"
	}
}

const (
	specsubPowerExponent = 2.0

	wienerBeta  = 0.98
	wienerFloor = 0.01
)

type specsubState struct {
	size int
}

type wienerState struct {
	size int

	noisePowerSpec     []float64
	snrInst            []float64
	snrPrioDD          []float64
	gDD                []float64
	speechAmpSpec      []float64
	speechAmpSpecPrev  []float64
}

type gainState struct {
	l1 int
	l2 int

	dft *dft.DFT

	window              []float64
	impulseResponseBefore []float64
	impulseResponseAfter  []float64
}

type tsnrState struct {
	mode Mode

	wiener wienerState

	snrPrio2Step []float64
	g2Step       []float64

	gain gainState
}

// Suppressor runs one configured suppression mode over an amplitude
// spectrum, producing a denoised speech amplitude spectrum. It is not safe
// for concurrent use.
type Suppressor struct {
	size int
	mode Mode

	specsub specsubState
	wiener  wienerState
	tsnr    tsnrState

	SpeechAmpSpec []float64
}

// New returns an unconfigured Suppressor. Call Configure before use.
func New() *Suppressor {
	return &Suppressor{}
}

// Configure allocates per-mode state for a transform of the given size.
func (s *Suppressor) Configure(sr, size int, mode Mode) error {
	s.size = size
	s.mode = mode

	switch mode {
	case SpecSub:
		s.specsub = specsubState{size: size}
	case Wiener:
		s.wiener = newWienerState(size)
	case TSNR, TSNRGain, RTSNR, RTSNRGain:
		s.tsnr = tsnrState{mode: mode, wiener: newWienerState(size)}
		s.tsnr.snrPrio2Step = make([]float64, size)
		s.tsnr.g2Step = make([]float64, size)
		if mode == TSNRGain || mode == RTSNRGain {
			gs, err := newGainState(size)
			if err != nil {
				return err
			}
			s.tsnr.gain = gs
		}
	default:
		return ErrInvalidMode
	}

	s.SpeechAmpSpec = make([]float64, size)
	return nil
}

func newWienerState(size int) wienerState {
	return wienerState{
		size:              size,
		noisePowerSpec:    make([]float64, size),
		snrInst:           make([]float64, size),
		snrPrioDD:         make([]float64, size),
		gDD:               make([]float64, size),
		speechAmpSpec:     make([]float64, size),
		speechAmpSpecPrev: make([]float64, size),
	}
}

func newGainState(size int) (gainState, error) {
	gs := gainState{l1: size, l2: size / 2}
	gs.dft = dft.New()
	if err := gs.dft.Configure(size); err != nil {
		return gainState{}, err
	}
	gs.window = make([]float64, gs.l2)
	dsp.Generate(gs.window, gs.l2, dsp.Hamming)
	gs.impulseResponseBefore = make([]float64, size)
	gs.impulseResponseAfter = make([]float64, size)
	return gs, nil
}

// Run processes one frame's noisy amplitude spectrum against the
// estimator's current noise amplitude spectrum, writing the result into
// SpeechAmpSpec.
func (s *Suppressor) Run(noisyAmpSpec, noiseAmpSpec []float64) {
	switch s.mode {
	case SpecSub:
		runSpecSub(&s.specsub, noisyAmpSpec, noiseAmpSpec, s.SpeechAmpSpec)
	case Wiener:
		runWiener(&s.wiener, noisyAmpSpec, noiseAmpSpec, s.SpeechAmpSpec)
	default:
		runTSNR(&s.tsnr, noisyAmpSpec, noiseAmpSpec, s.SpeechAmpSpec)
	}
}

func runSpecSub(st *specsubState, noisy, noise, out []float64) {
	snrPost := specsubSNRPost(noisy, noise)
	alpha := specsubAlpha(snrPost)
	beta := specsubBeta(snrPost)

	for k := 0; k < st.size; k++ {
		u := math.Pow(noisy[k], specsubPowerExponent)
		v := math.Pow(noise[k], specsubPowerExponent)

		var tmp float64
		if u > (alpha+beta)*v {
			tmp = u - alpha*v
		} else {
			tmp = beta * v
		}
		out[k] = math.Pow(tmp, 1.0/specsubPowerExponent)
	}
}

func specsubSNRPost(noisy, noise []float64) float64 {
	noisyPower := dsp.SumSquares(noisy)
	noisePower := dsp.SumSquares(noise)
	return 10.0 * math.Log10(noisyPower/noisePower)
}

func specsubAlpha(snrPost float64) float64 {
	const (
		min    = -5.0
		max    = 20.0
		alpha0 = 4.0
	)
	switch {
	case snrPost >= min && snrPost <= max:
		return alpha0 - snrPost*3.0/max
	case snrPost < min:
		return 5.0
	default:
		return 1.0
	}
}

func specsubBeta(snrPost float64) float64 {
	switch {
	case snrPost > 0.0:
		return 0.01
	case snrPost < -5.0:
		return 0.04
	default:
		return 0.02
	}
}

func runWiener(w *wienerState, noisy, noise, out []float64) {
	stepWienerGain(w, noisy, noise)

	for i := 0; i < w.size; i++ {
		w.speechAmpSpec[i] = w.gDD[i] * noisy[i]
	}

	copy(w.speechAmpSpecPrev, w.speechAmpSpec)
	copy(out, w.speechAmpSpec)
}

// stepWienerGain computes noise_power_spec, SNR_inst, SNR_prio_dd and G_dd
// — the Scalart-Filho decision-directed machinery shared verbatim by the
// plain Wiener suppressor and the first pass of every TSNR variant.
func stepWienerGain(w *wienerState, noisy, noise []float64) {
	for i := 0; i < w.size; i++ {
		w.noisePowerSpec[i] = noise[i] * noise[i]
	}
	for i := 0; i < w.size; i++ {
		noisyPowerSpec := noisy[i] * noisy[i]
		snrPost := noisyPowerSpec / w.noisePowerSpec[i]
		w.snrInst[i] = math.Max(snrPost-1.0, wienerFloor)
	}
	for i := 0; i < w.size; i++ {
		w.snrPrioDD[i] = wienerBeta*((w.speechAmpSpecPrev[i]*w.speechAmpSpecPrev[i])/w.noisePowerSpec[i]) +
			(1.0-wienerBeta)*w.snrInst[i]
	}
	for i := 0; i < w.size; i++ {
		w.gDD[i] = w.snrPrioDD[i] / (w.snrPrioDD[i] + 1.0)
	}
}

func runTSNR(t *tsnrState, noisy, noise, out []float64) {
	w := &t.wiener
	stepWienerGain(w, noisy, noise)

	for i := 0; i < w.size; i++ {
		if t.mode == TSNR || t.mode == TSNRGain {
			w.speechAmpSpec[i] = w.gDD[i] * noisy[i]
		} else {
			w.speechAmpSpec[i] = (2.0 - w.gDD[i]) * w.gDD[i] * noisy[i]
		}
	}

	for i := 0; i < w.size; i++ {
		t.snrPrio2Step[i] = (w.speechAmpSpec[i] * w.speechAmpSpec[i]) / w.noisePowerSpec[i]
	}
	for i := 0; i < w.size; i++ {
		t.g2Step[i] = t.snrPrio2Step[i] / (t.snrPrio2Step[i] + 1.0)
	}

	if t.mode == TSNR || t.mode == RTSNR {
		for i := 0; i < w.size; i++ {
			t.g2Step[i] = math.Max(t.g2Step[i], wienerFloor)
		}
	} else {
		applyGainShaping(&t.gain, t.g2Step)
	}

	for i := 0; i < w.size; i++ {
		w.speechAmpSpec[i] = t.g2Step[i] * noisy[i]
	}

	copy(w.speechAmpSpecPrev, w.speechAmpSpec)
	copy(out, w.speechAmpSpec)
}

// applyGainShaping implements the Scalart-Plapous gain-shaping refinement:
// the frequency-domain gain is carried into the time domain as an impulse
// response, truncated and re-windowed to suppress musical-noise artifacts,
// then carried back to the frequency domain and rescaled to preserve the
// pre-shaping mean gain energy.
func applyGainShaping(g *gainState, g2Step []float64) {
	meanGainBefore := dsp.SumSquares(g2Step) / float64(g.l1)

	for i := 0; i < g.l1; i++ {
		g.dft.Real[i] = g2Step[i]
		g.dft.Imag[i] = 0.0
	}
	g.dft.RunIDFT()
	copy(g.impulseResponseBefore, g.dft.Real)

	half := g.l2 / 2
	for i := 0; i < half; i++ {
		g.impulseResponseAfter[i] = g.impulseResponseBefore[i] * g.window[i+half]
	}
	for i := 0; i < g.l2; i++ {
		g.impulseResponseAfter[i+half] = 0.0
	}
	for i := 0; i < half; i++ {
		g.impulseResponseAfter[i+half+g.l2] = g.impulseResponseBefore[g.l2+half+i] * g.window[i]
	}

	for i := 0; i < g.l1; i++ {
		g.dft.Real[i] = g.impulseResponseAfter[i]
		g.dft.Imag[i] = 0.0
	}
	g.dft.RunDFT()
	dsp.AmplitudeSpectrum(g.dft.Real, g.dft.Imag, g2Step)

	meanGainAfter := dsp.SumSquares(g2Step) / float64(g.l1)

	scale := math.Sqrt(meanGainBefore / meanGainAfter)
	for i := 0; i < g.l1; i++ {
		g2Step[i] *= scale
	}
}
