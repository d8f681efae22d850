package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ems_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ems_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Ingestion metrics
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ems_telemetry_readings_total",
			Help: "Total number of readings received",
		},
		[]string{"status"}, // status: accepted, rejected
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ems_telemetry_batch_size",
			Help:    "Size of reading batches received",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ems_telemetry_validation_errors_total",
			Help: "Total number of validation errors",
		},
		[]string{"field"},
	)

	AlertsRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ems_alerts_raised_total",
			Help: "Total number of threshold alerts raised",
		},
	)

	// Simulator metrics
	SimulatorSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ems_simulator_sends_total",
			Help: "Total number of delivery attempts by the simulator",
		},
		[]string{"mode", "outcome"}, // mode: single, batch; outcome: ok, failed
	)

	SimulatorBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ems_simulator_buffer_size",
			Help: "Number of readings currently buffered for resend",
		},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ems_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
