package hsv

import (
	"github.com/speechden/hsv/internal/dft"
	"github.com/speechden/hsv/internal/estimator"
	"github.com/speechden/hsv/internal/suppressor"
)

// channel holds the per-channel DFT/estimator/suppressor state and the
// overlap-add accumulator for one audio channel.
type channel struct {
	dft *dft.DFT
	est *estimator.Estimator
	sup *suppressor.Suppressor

	ampSpec   []float64
	powerSpec []float64
	phaseSpec []float64

	overlapBuf []float64
}

func configureChannel(sr, dftSize int, mode suppressor.Mode) (*channel, error) {
	c := &channel{}

	c.dft = dft.New()
	if err := c.dft.Configure(dftSize); err != nil {
		return nil, err
	}

	c.ampSpec = make([]float64, dftSize)
	c.powerSpec = make([]float64, dftSize)
	c.phaseSpec = make([]float64, dftSize)

	c.est = estimator.New()
	c.est.Configure(sr, dftSize)

	c.sup = suppressor.New()
	if err := c.sup.Configure(sr, dftSize, mode); err != nil {
		return nil, err
	}

	c.overlapBuf = make([]float64, dftSize)

	return c, nil
}
