package restclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder publishes Prometheus metrics for sent requests and decode
// outcomes. A nil *Recorder is valid and records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	decodes  *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg. When reg is nil a dedicated
// registry is created so that several recorders do not collide.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restclient",
		Subsystem: "request",
		Name:      "sent_total",
		Help:      "Requests completed by the transport, by method and status code.",
	}, []string{"method", "status_code"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "restclient",
		Subsystem: "request",
		Name:      "duration_seconds",
		Help:      "Time between dispatch and a fully read response.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	decodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restclient",
		Subsystem: "decode",
		Name:      "total",
		Help:      "Decode operations by payload shape and outcome.",
	}, []string{"operation", "outcome"})

	reg.MustRegister(requests, latency, decodes)

	return &Recorder{
		gatherer: reg,
		requests: requests,
		latency:  latency,
		decodes:  decodes,
	}
}

// Gatherer returns the registry backing the recorder.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveSend records a completed exchange. A status of 0 means the
// transport failed before any response.
func (r *Recorder) ObserveSend(method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	statusLabel := strconv.Itoa(status)
	if status <= 0 {
		statusLabel = "none"
	}
	r.requests.WithLabelValues(method, statusLabel).Inc()
	r.latency.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveDecode records the outcome of a decode operation.
func (r *Recorder) ObserveDecode(operation, outcome string) {
	if r == nil {
		return
	}
	r.decodes.WithLabelValues(operation, outcome).Inc()
}
