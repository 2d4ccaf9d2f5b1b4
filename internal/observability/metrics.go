// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package observability holds the Prometheus instrumentation for the
// position pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geoguide"

// Metrics holds the Prometheus counters, histograms and gauges for the
// position validation and address resolution pipeline.
type Metrics struct {
	SamplesValidated *prometheus.CounterVec // label: outcome
	GeocodeRequests  *prometheus.CounterVec // label: outcome={success,failure,stale}
	GeocodeDuration  prometheus.Histogram
	CacheLookups     *prometheus.CounterVec // label: result={hit,miss}
	ChangeEvents     prometheus.Counter
	Notifications    prometheus.Counter
	PipelineRunning  prometheus.Gauge
}

// NewMetrics creates all pipeline metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SamplesValidated,
		m.GeocodeRequests,
		m.GeocodeDuration,
		m.CacheLookups,
		m.ChangeEvents,
		m.Notifications,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct services repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SamplesValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_validated_total",
			Help:      "Location samples processed by the validator, by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_duration_seconds",
			Help:      "Reverse geocoding request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_cache_lookups_total",
			Help:      "Address cache lookups by result.",
		}, []string{"result"}),
		ChangeEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Address field change events detected.",
		}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Change events published to the notification hub.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
	}
}
