package metrics

import (
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Steganography metrics
	Embeds       prometheus.Counter
	Extracts     prometheus.Counter
	Failures     *prometheus.CounterVec
	PayloadSize  *prometheus.HistogramVec
	CarrierBytes prometheus.Histogram
	PSNR         prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Embeds: factory.NewCounter(prometheus.CounterOpts{
			Name: "stego_embeds_total",
			Help: "Total number of payloads embedded",
		}),
		Extracts: factory.NewCounter(prometheus.CounterOpts{
			Name: "stego_extracts_total",
			Help: "Total number of payloads extracted",
		}),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stego_failures_total",
				Help: "Total number of failed operations",
			},
			[]string{"operation", "reason"}, // reason: capacity, extraction, decode, encode, input
		),
		PayloadSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stego_payload_size_bytes",
				Help:    "Size of embedded or extracted payloads",
				Buckets: prometheus.ExponentialBuckets(16, 4, 10), // 16B to ~4MB
			},
			[]string{"operation"},
		),
		CarrierBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stego_carrier_size_bytes",
			Help:    "Number of carrier samples per image",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),
		PSNR: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stego_psnr_db",
			Help:    "PSNR of embedded carriers against their originals",
			Buckets: []float64{30, 40, 50, 60, 70, 80, 90},
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stego_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stego_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordEmbed records a successful embed. Infinite PSNR (no sample changed)
// is not observed.
func (m *Metrics) RecordEmbed(payloadBytes, carrierBytes int, psnr float64) {
	m.Embeds.Inc()
	m.PayloadSize.WithLabelValues("embed").Observe(float64(payloadBytes))
	m.CarrierBytes.Observe(float64(carrierBytes))
	if !math.IsInf(psnr, 1) {
		m.PSNR.Observe(psnr)
	}
}

// RecordExtract records a successful extraction
func (m *Metrics) RecordExtract(payloadBytes, carrierBytes int) {
	m.Extracts.Inc()
	m.PayloadSize.WithLabelValues("extract").Observe(float64(payloadBytes))
	m.CarrierBytes.Observe(float64(carrierBytes))
}

// RecordFailure records a failed operation
func (m *Metrics) RecordFailure(operation, reason string) {
	m.Failures.WithLabelValues(operation, reason).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(durationSeconds)
}
