// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides instance-based Prometheus metric construction
// and the HTTP server that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IMPORTANT: All functions in this file accept a prometheus.Registerer parameter.
// NEVER use global prometheus.DefaultRegisterer or prometheus.DefaultGatherer.
//
// This ensures metrics can be garbage collected when the registry is discarded.

// NewCounter creates and registers a counter metric.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	generationsTotal := metrics.NewCounter(registry, "generations_total", "Total generation cycles")
//	generationsTotal.Inc()
func NewCounter(registry prometheus.Registerer, name, help string) prometheus.Counter {
	return promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: help,
	})
}

// NewCounterVec creates and registers a counter vector with labels.
//
// Use counter vectors to track the same counter across different
// categories, such as render outcomes per template.
func NewCounterVec(registry prometheus.Registerer, name, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// NewGauge creates and registers a gauge metric.
func NewGauge(registry prometheus.Registerer, name, help string) prometheus.Gauge {
	return promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}

// NewHistogramWithBuckets creates and registers a histogram with custom buckets.
//
// For duration metrics, use DurationBuckets() as a starting point.
func NewHistogramWithBuckets(registry prometheus.Registerer, name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: buckets,
	})
}

// DurationBuckets returns histogram buckets suitable for duration metrics
// in seconds.
//
// The buckets cover a range from 10ms to 10s, which is appropriate for
// render and generation durations.
func DurationBuckets() []float64 {
	return []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}
}
