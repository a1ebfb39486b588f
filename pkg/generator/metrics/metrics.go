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

// Package metrics bridges generation events to Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgmetrics "zcl-template-gen/pkg/metrics"
)

// Metrics holds all generator-specific Prometheus metrics.
//
// Create one instance per process, registered against an instance-based
// registry so state never survives reinitialization.
type Metrics struct {
	// Generation metrics
	GenerationDuration prometheus.Histogram
	GenerationTotal    *prometheus.CounterVec

	// Artifact metrics
	RenderDuration    prometheus.Histogram
	ArtifactsRendered prometheus.Counter
	RenderErrors      prometheus.Counter

	// Event metrics
	EventsObserved prometheus.Counter
}

// New creates all generator metrics and registers them with the provided
// registry.
//
// Pass an instance-based registry (prometheus.NewRegistry()), NOT
// prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		GenerationDuration: pkgmetrics.NewHistogramWithBuckets(
			registry,
			"zclgen_generation_duration_seconds",
			"Time spent in generation cycles",
			pkgmetrics.DurationBuckets(),
		),
		GenerationTotal: pkgmetrics.NewCounterVec(
			registry,
			"zclgen_generation_total",
			"Total number of generation cycles by outcome",
			[]string{"status"},
		),

		RenderDuration: pkgmetrics.NewHistogramWithBuckets(
			registry,
			"zclgen_render_duration_seconds",
			"Time spent rendering individual templates",
			pkgmetrics.DurationBuckets(),
		),
		ArtifactsRendered: pkgmetrics.NewCounter(
			registry,
			"zclgen_artifacts_rendered_total",
			"Total number of artifacts rendered successfully",
		),
		RenderErrors: pkgmetrics.NewCounter(
			registry,
			"zclgen_render_errors_total",
			"Total number of failed template renders",
		),

		EventsObserved: pkgmetrics.NewCounter(
			registry,
			"zclgen_events_observed_total",
			"Total number of events observed on the bus",
		),
	}
}

// RecordGeneration records a completed generation cycle.
func (m *Metrics) RecordGeneration(durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.GenerationTotal.WithLabelValues(status).Inc()
	if success {
		m.GenerationDuration.Observe(durationSeconds)
	}
}

// RecordArtifact records a successful template render.
func (m *Metrics) RecordArtifact(durationSeconds float64) {
	m.ArtifactsRendered.Inc()
	m.RenderDuration.Observe(durationSeconds)
}

// RecordRenderError records a failed template render.
func (m *Metrics) RecordRenderError() {
	m.RenderErrors.Inc()
}

// RecordEvent records one observed bus event.
func (m *Metrics) RecordEvent() {
	m.EventsObserved.Inc()
}
