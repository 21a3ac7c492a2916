package hsv

import (
	"errors"
	"fmt"
	"math"

	"github.com/speechden/hsv/internal/dsp"
	"github.com/speechden/hsv/internal/ringbuf"
)

// Sentinel errors replacing the reference implementation's numeric
// HSV_CODE return values.
var (
	ErrAlloc    = errors.New("hsv: allocation failed")
	ErrOverflow = errors.New("hsv: ring buffer overflow")
	ErrUnknown  = errors.New("hsv: unknown error")
)

// Denoiser is the streaming orchestrator: push raw PCM bytes in, get
// denoised PCM bytes out. It is not safe for concurrent use.
type Denoiser struct {
	conf Config

	rb *ringbuf.RingBuffer

	frameSizeSamples   int
	overlapSizeSamples int
	stepSizeSamples    int

	frameSizeBytes   int
	overlapSizeBytes int
	stepSizeBytes    int

	normFactor float64

	dftSizeSamples int

	window []float64

	chans []*channel

	idxFrame      int
	pendingBytes  int
}

// New returns an unconfigured Denoiser. Call Configure before use.
func New() *Denoiser {
	return &Denoiser{}
}

// Configure validates cfg (see ValidateConfig) and allocates the ring
// buffer, window and per-channel pipeline state. Configure is not
// idempotent: call Deconfigure before reconfiguring an already-configured
// Denoiser.
func (d *Denoiser) Configure(cfg Config) error {
	if field := ValidateConfig(cfg); field != 0 {
		return fmt.Errorf("hsv: invalid config field %d", field)
	}

	d.conf = cfg

	if d.conf.Cap == 0 {
		d.conf.Cap = DefaultCap
	}
	d.rb = ringbuf.New()
	d.rb.Configure(d.conf.Cap)

	if d.conf.FrameSizeSamples == 0 {
		d.conf.FrameSizeSamples = int(2.0 * float64(d.conf.SampleRate) / 100.0)
	}
	d.frameSizeSamples = d.conf.FrameSizeSamples
	if d.frameSizeSamples%2 == 1 {
		d.frameSizeSamples++
	}
	if d.conf.OverlapPercent == 0 {
		d.conf.OverlapPercent = DefaultOverlapPct
	}
	d.overlapSizeSamples = int(math.Floor(float64(d.frameSizeSamples) * float64(d.conf.OverlapPercent) / 100.0))
	d.stepSizeSamples = d.frameSizeSamples - d.overlapSizeSamples

	d.frameSizeBytes = d.frameSizeSamples * 2 * d.conf.Channels
	d.overlapSizeBytes = d.overlapSizeSamples * 2 * d.conf.Channels
	d.stepSizeBytes = d.stepSizeSamples * 2 * d.conf.Channels

	d.normFactor = 1.0 / ((100.0 - float64(d.conf.OverlapPercent)) / 100.0)

	if d.conf.DFTSizeSamples == 0 {
		d.conf.DFTSizeSamples = d.frameSizeSamples * 2
	}
	d.dftSizeSamples = d.conf.DFTSizeSamples

	d.window = make([]float64, d.frameSizeSamples)
	dsp.Generate(d.window, d.frameSizeSamples, dsp.Hann)

	d.chans = make([]*channel, d.conf.Channels)
	for ch := 0; ch < d.conf.Channels; ch++ {
		c, err := configureChannel(d.conf.SampleRate, d.dftSizeSamples, d.conf.Mode)
		if err != nil {
			// Only the first ch channels were actually configured; Go has
			// no manual free to mirror, so dropping the partial slice and
			// the ring buffer here and letting the GC reclaim it is the
			// correct unwind (the reference implementation's unwind loop
			// incorrectly deconfigures channel ch repeatedly instead of
			// the ch channels that succeeded).
			d.chans = nil
			d.rb.Deconfigure()
			return fmt.Errorf("hsv: configure channel %d: %w", ch, err)
		}
		d.chans[ch] = c
	}

	d.idxFrame = 0
	d.pendingBytes = 0

	return nil
}

// Push appends data to the internal ring buffer and runs as many frames as
// are now available, returning the number of denoised bytes produced (now
// retrievable via Get). It returns ErrOverflow if data would not fit in
// the buffer's remaining capacity.
func (d *Denoiser) Push(data []byte) (int, error) {
	if err := d.rb.Push(data); err != nil {
		return 0, ErrOverflow
	}
	d.pendingBytes += len(data)
	return d.denoise(), nil
}

// Get drains up to len(dst) bytes of already-denoised PCM into dst,
// returning the number of bytes written.
func (d *Denoiser) Get(dst []byte) int {
	dataLen := d.rb.Len() - d.pendingBytes
	if len(dst) < dataLen {
		dataLen = len(dst)
	}
	return d.rb.Get(dst[:dataLen])
}

// Flush resets the frame cursor to the current write position and clears
// the pending-byte count, surfacing any unprocessed tail bytes to Get
// without running them through another frame of analysis.
func (d *Denoiser) Flush() {
	d.idxFrame = d.rb.IdxIn()
	d.pendingBytes = 0
}

// Deconfigure releases all internal state, leaving d ready for a fresh
// Configure call.
func (d *Denoiser) Deconfigure() {
	d.chans = nil
	d.window = nil
	if d.rb != nil {
		d.rb.Deconfigure()
	}
	*d = Denoiser{}
}

func (d *Denoiser) denoise() int {
	processed := 0

	for d.pendingBytes >= d.frameSizeBytes {
		for ch := 0; ch < d.conf.Channels; ch++ {
			c := d.chans[ch]

			for i := range c.dft.Real {
				c.dft.Real[i] = 0
				c.dft.Imag[i] = 0
			}
			for k := 0; k < d.frameSizeSamples; k++ {
				idx := (d.idxFrame/2 + k*d.conf.Channels + ch) % d.rb.SampleCap()
				c.dft.Real[k] = int16ToFloat(d.rb.Int16At(idx))
			}

			dsp.Apply(d.window, c.dft.Real[:d.frameSizeSamples], c.dft.Real[:d.frameSizeSamples])

			c.dft.RunDFT()

			dsp.AmplitudeSpectrum(c.dft.Real, c.dft.Imag, c.ampSpec)
			dsp.PowerSpectrum(c.dft.Real, c.dft.Imag, c.powerSpec)
			dsp.PhaseSpectrum(c.dft.Real, c.dft.Imag, c.phaseSpec)

			c.est.Run(c.powerSpec)

			c.sup.Run(c.ampSpec, c.est.NoiseAmpSpec)

			for k := 0; k < d.dftSizeSamples; k++ {
				c.dft.Real[k] = c.sup.SpeechAmpSpec[k] * math.Cos(c.phaseSpec[k])
				c.dft.Imag[k] = c.sup.SpeechAmpSpec[k] * math.Sin(c.phaseSpec[k])
			}

			c.dft.RunIDFT()

			for k := 0; k < d.stepSizeSamples; k++ {
				d.pendingBytes -= 2
				processed += 2
				idx := (d.idxFrame/2 + k*d.conf.Channels + ch) % d.rb.SampleCap()
				d.rb.SetInt16At(idx, floatToInt16(c.dft.Real[k]/d.normFactor+c.overlapBuf[k]))
			}

			for k := 0; k < d.dftSizeSamples; k++ {
				c.overlapBuf[k] += c.dft.Real[k] / d.normFactor
			}
			copy(c.overlapBuf, c.overlapBuf[d.stepSizeSamples:])
			for k := d.dftSizeSamples - d.stepSizeSamples; k < d.dftSizeSamples; k++ {
				c.overlapBuf[k] = 0
			}
		}
		d.idxFrame = (d.idxFrame + d.stepSizeBytes) % d.rb.Cap()
	}

	return processed
}
