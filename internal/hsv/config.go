// Package hsv implements the streaming orchestrator that frames,
// windows, transforms, estimates, suppresses, inverse-transforms and
// overlap-adds 16-bit PCM audio through the denoiser pipeline.
package hsv

import "github.com/speechden/hsv/internal/suppressor"

// Default/limit constants mirrored from the reference configuration.
const (
	MaxChans          = 4
	DefaultCap        = 16384
	DefaultOverlapPct = 50

	supportedBitSize = 16
)

// Config describes one Denoiser instance. Fields left at zero take the
// documented default for that field; SampleRate, Channels and BitSize must
// always be set explicitly.
type Config struct {
	SampleRate int
	Channels   int
	BitSize    int

	Mode suppressor.Mode

	FrameSizeSamples int
	OverlapPercent   int
	DFTSizeSamples   int
	Cap              int
}

// ValidateConfig checks cfg for internal consistency, returning 0 if valid
// or the 1-based index (matching the reference implementation's field
// ordering) of the first invalid field. Field 5 is reserved and never
// returned.
func ValidateConfig(cfg Config) int {
	tmp := cfg

	if tmp.SampleRate == 0 {
		return 1
	}
	if tmp.Channels == 0 || tmp.Channels > MaxChans {
		return 2
	}
	if tmp.BitSize != supportedBitSize {
		return 3
	}

	if tmp.Mode < suppressor.SpecSub || tmp.Mode > suppressor.RTSNRGain {
		return 4
	}

	if tmp.FrameSizeSamples == 0 {
		tmp.FrameSizeSamples = int(2.0 * float64(tmp.SampleRate) / 100.0)
	}

	if tmp.OverlapPercent == 0 {
		tmp.OverlapPercent = DefaultOverlapPct
	} else if tmp.OverlapPercent >= 100 {
		return 6
	}

	if tmp.DFTSizeSamples == 0 {
		tmp.DFTSizeSamples = 2 * tmp.FrameSizeSamples
	} else if tmp.DFTSizeSamples < tmp.FrameSizeSamples {
		return 7
	}

	if tmp.Cap != 0 {
		if tmp.Cap%2 != 0 || tmp.Cap < tmp.FrameSizeSamples {
			return 8
		}
	}

	return 0
}
