// Package estimator implements the MCRA-2 (Minimum Controlled Recursive
// Averaging, revision 2) noise power spectrum estimator with Doblinger
// minimum tracking.
package estimator

import "math"

const (
	alphaSmooth = 0.7

	beta  = 0.8
	gamma = 0.998

	alphaSPP = 0.2

	alpha = 0.95

	deltaLF = 2.0
	deltaMF = 2.0
	deltaHF = 5.0
)

// Estimator tracks the running noise power/amplitude spectrum estimate for
// one channel. It is not safe for concurrent use.
type Estimator struct {
	size int

	deltaK []float64

	p     []float64
	pPrev []float64

	pMin     []float64
	pMinPrev []float64

	sppK []float64

	NoisePowerSpec []float64
	NoiseAmpSpec   []float64

	gotFirst bool
}

// New returns an unconfigured Estimator. Call Configure before use.
func New() *Estimator {
	return &Estimator{}
}

// Configure allocates per-bin state for a transform of the given size at
// sample rate sr, and builds the voice-presence threshold table.
func (e *Estimator) Configure(sr, size int) {
	e.size = size
	e.deltaK = make([]float64, size)
	initDeltaK(e.deltaK, sr, size)

	e.p = make([]float64, size)
	e.pPrev = make([]float64, size)
	e.pMin = make([]float64, size)
	e.pMinPrev = make([]float64, size)
	e.sppK = make([]float64, size)
	e.NoisePowerSpec = make([]float64, size)
	e.NoiseAmpSpec = make([]float64, size)
	e.gotFirst = false
}

func initDeltaK(deltaK []float64, sr, size int) {
	freqRes := float64(sr) / float64(size)
	lf := int(math.Floor(1000.0 / freqRes))
	mf := int(math.Floor(3000.0 / freqRes))

	for k := 0; k < lf; k++ {
		deltaK[k] = deltaLF
	}
	for k := 0; k < mf-lf; k++ {
		deltaK[k+lf] = deltaMF
	}
	for k := 0; k < size/2-mf; k++ {
		deltaK[k+mf] = deltaHF
	}
	deltaK[size/2] = deltaHF
	for k := 1; k < size/2; k++ {
		deltaK[size-k] = deltaK[k]
	}
}

// Run feeds one frame's power spectrum P through the estimator, updating
// NoisePowerSpec/NoiseAmpSpec in place. The first call primes the running
// state directly from P; every subsequent call runs the full MCRA-2
// update.
func (e *Estimator) Run(p []float64) {
	if !e.gotFirst {
		e.getFirst(p)
		return
	}
	e.process(p)
}

func (e *Estimator) getFirst(p []float64) {
	copy(e.p, p)
	copy(e.pPrev, p)
	copy(e.pMin, p)
	copy(e.pMinPrev, p)
	copy(e.NoisePowerSpec, p)
	e.calculateNoiseAmpSpec()
	e.gotFirst = true
}

func (e *Estimator) process(p []float64) {
	for k := 0; k < e.size; k++ {
		e.p[k] = alphaSmooth*e.pPrev[k] + (1.0-alphaSmooth)*p[k]
	}

	copy(e.pPrev, e.p)

	for k := 0; k < e.size; k++ {
		if e.pMinPrev[k] < e.p[k] {
			e.pMin[k] = gamma*e.pMinPrev[k] + ((1.0-gamma)/(1.0-beta))*(e.p[k]-beta*e.pPrev[k])
		} else {
			e.pMin[k] = e.p[k]
		}
	}

	copy(e.pMinPrev, e.pMin)

	for k := 0; k < e.size; k++ {
		srK := e.p[k] / e.pMin[k]
		sppRaw := 0.0
		if srK > e.deltaK[k] {
			sppRaw = 1.0
		}
		e.sppK[k] = alphaSPP*e.sppK[k] + (1.0-alphaSPP)*sppRaw

		ak := alpha + (1.0-alpha)*e.sppK[k]
		e.NoisePowerSpec[k] = ak*e.NoisePowerSpec[k] + (1.0-ak)*e.p[k]
	}

	e.calculateNoiseAmpSpec()
}

func (e *Estimator) calculateNoiseAmpSpec() {
	for k := 0; k < e.size; k++ {
		e.NoiseAmpSpec[k] = math.Sqrt(e.NoisePowerSpec[k])
	}
}
