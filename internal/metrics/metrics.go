// Package metrics exposes Prometheus counters for the denoiser pipeline:
// Push calls per mode, bytes pushed/emitted, and rejected pushes, in the
// promauto registration style the rest of this project's stack uses
// elsewhere for gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors registered against the default Prometheus
// registry for one denoiser process.
type Metrics struct {
	framesProcessed *prometheus.CounterVec // successful Push calls, labeled by mode
	bytesPushed     prometheus.Counter     // total raw PCM bytes pushed in
	bytesEmitted    prometheus.Counter     // total denoised PCM bytes drained out
	pushOverflows   prometheus.Counter     // Push calls rejected with ErrOverflow
}

// New registers and returns a fresh Metrics collector set.
func New() *Metrics {
	return &Metrics{
		framesProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsv_frames_processed_total",
				Help: "Total number of successful Push calls (one per pushed chunk of PCM, not per analysis frame), labeled by suppressor mode.",
			},
			[]string{"mode"},
		),
		bytesPushed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hsv_bytes_pushed_total",
				Help: "Total raw PCM bytes pushed into the denoiser.",
			},
		),
		bytesEmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hsv_bytes_emitted_total",
				Help: "Total denoised PCM bytes drained from the denoiser.",
			},
		),
		pushOverflows: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hsv_push_overflows_total",
				Help: "Total Push calls rejected because the ring buffer had no room.",
			},
		),
	}
}

// ObservePush records a successful Push call of n raw bytes for the given
// mode label.
func (m *Metrics) ObservePush(mode string, n int) {
	m.bytesPushed.Add(float64(n))
	m.framesProcessed.WithLabelValues(mode).Inc()
}

// ObserveGet records n denoised bytes drained via Get.
func (m *Metrics) ObserveGet(n int) {
	m.bytesEmitted.Add(float64(n))
}

// ObserveOverflow records a rejected Push call.
func (m *Metrics) ObserveOverflow() {
	m.pushOverflows.Inc()
}
