// Package filternode adapts the denoiser to a channel-based streaming
// interface so it can sit behind a goroutine-per-stream host, the way the
// rest of this project's stack plugs processors onto a live PCM tap: a
// Start method spawns a goroutine that drains an inbound sample channel
// and feeds an outbound one, and Stop tears it down.
package filternode

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/speechden/hsv/internal/hsv"
	"github.com/speechden/hsv/internal/metrics"
	"github.com/speechden/hsv/internal/suppressor"
)

// FilterNode is the interface a PCM host uses to attach and detach a
// streaming processor from a live audio tap. Implementations must be safe
// to Stop from a different goroutine than the one Start's internal loop
// runs on.
type FilterNode interface {
	// Start begins processing audio and sending results; it returns once
	// the processing goroutine has been launched, not once it exits.
	Start(audioChan <-chan []int16, resultChan chan<- []int16) error

	// Stop halts the processing goroutine and releases its resources.
	Stop() error

	// Name returns the filter's registered name.
	Name() string
}

// Params carries the stream parameters the host knows about a tap (sample
// rate, channel count) separately from any denoiser tuning knobs, mirroring
// the split between stream-derived and user-configurable audio extension
// parameters elsewhere in this stack.
type Params struct {
	SampleRate int
	Channels   int
	Mode       suppressor.Mode
}

// HSVFilterNode adapts a hsv.Denoiser to the FilterNode interface.
type HSVFilterNode struct {
	params  Params
	metrics *metrics.Metrics

	mu       sync.Mutex
	den      *hsv.Denoiser
	stopChan chan struct{}
	running  bool
}

// New constructs an HSVFilterNode. m may be nil if the caller does not
// want Prometheus counters for this instance.
func New(params Params, m *metrics.Metrics) *HSVFilterNode {
	return &HSVFilterNode{params: params, metrics: m}
}

// Name implements FilterNode.
func (n *HSVFilterNode) Name() string { return "hsv" }

// Start implements FilterNode. It launches a goroutine that converts
// incoming []int16 sample slices to the denoiser's byte-oriented Push/Get
// API and back, forwarding denoised samples to resultChan until the
// audioChan is closed or Stop is called.
func (n *HSVFilterNode) Start(audioChan <-chan []int16, resultChan chan<- []int16) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return fmt.Errorf("filternode: %s already running", n.Name())
	}

	den := hsv.New()
	cfg := hsv.Config{
		SampleRate: n.params.SampleRate,
		Channels:   n.params.Channels,
		BitSize:    16,
		Mode:       n.params.Mode,
	}
	if err := den.Configure(cfg); err != nil {
		return fmt.Errorf("filternode: configure denoiser: %w", err)
	}

	n.den = den
	n.stopChan = make(chan struct{})
	n.running = true

	go n.run(audioChan, resultChan, n.stopChan)

	return nil
}

func (n *HSVFilterNode) run(audioChan <-chan []int16, resultChan chan<- []int16, stopChan chan struct{}) {
	pcmIn := make([]byte, 0, 4096)
	out := make([]byte, 4096)

	for {
		select {
		case <-stopChan:
			return
		case samples, ok := <-audioChan:
			if !ok {
				return
			}

			pcmIn = pcmIn[:0]
			for _, s := range samples {
				pcmIn = binary.LittleEndian.AppendUint16(pcmIn, uint16(s))
			}

			n.mu.Lock()
			den := n.den
			n.mu.Unlock()
			if den == nil {
				return
			}

			produced, err := den.Push(pcmIn)
			if err != nil {
				if n.metrics != nil {
					n.metrics.ObserveOverflow()
				}
				continue
			}
			if n.metrics != nil {
				n.metrics.ObservePush(n.params.Mode.String(), len(pcmIn))
			}
			_ = produced

			for {
				got := den.Get(out)
				if got == 0 {
					break
				}
				if n.metrics != nil {
					n.metrics.ObserveGet(got)
				}
				result := make([]int16, got/2)
				for i := range result {
					result[i] = int16(binary.LittleEndian.Uint16(out[i*2:]))
				}
				select {
				case resultChan <- result:
				case <-stopChan:
					return
				}
			}
		}
	}
}

// Stop implements FilterNode.
func (n *HSVFilterNode) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.running {
		return nil
	}
	close(n.stopChan)
	n.den.Deconfigure()
	n.den = nil
	n.running = false
	return nil
}
