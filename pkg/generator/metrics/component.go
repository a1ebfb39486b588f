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

package metrics

import (
	"context"

	"zcl-template-gen/pkg/events"
)

// Component is an event-driven metrics collector.
//
// Subscribes to generation events and updates metrics via the Metrics
// struct. This is an event adapter that bridges domain events to
// Prometheus metrics; the generator itself never touches Prometheus.
//
// Lifecycle: NewComponent() → Start() → Run()
//   - Start() must be called before eventBus.Start()
//   - Run() must be called after eventBus.Start()
type Component struct {
	metrics   *Metrics
	eventBus  *events.EventBus
	eventChan <-chan events.Event
}

// NewComponent creates a new metrics component that listens to events.
//
// Lifecycle:
//  1. component := NewComponent(metrics, eventBus)
//  2. component.Start()   // Subscribe to event bus
//  3. eventBus.Start()    // Start event bus (releases buffered events)
//  4. go component.Run(ctx)
func NewComponent(metrics *Metrics, eventBus *events.EventBus) *Component {
	return &Component{
		metrics:  metrics,
		eventBus: eventBus,
	}
}

// Start subscribes to the event bus.
//
// This method must be called before eventBus.Start() to ensure the
// component receives all events including any buffered events that are
// replayed.
func (c *Component) Start() {
	c.eventChan = c.eventBus.Subscribe(200)
}

// Run starts the metrics component event loop.
//
// This method blocks until the context is cancelled. It should be run
// in a goroutine alongside the other components.
//
// IMPORTANT: Start() must be called before Run(), otherwise this will panic.
func (c *Component) Run(ctx context.Context) error {
	if c.eventChan == nil {
		panic("Component.Start() must be called before Run()")
	}

	for {
		select {
		case event := <-c.eventChan:
			c.handleEvent(event)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Metrics returns the underlying Metrics instance for direct access.
func (c *Component) Metrics() *Metrics {
	return c.metrics
}

// handleEvent processes individual events and updates corresponding metrics.
func (c *Component) handleEvent(event events.Event) {
	c.metrics.RecordEvent()

	switch e := event.(type) {
	case *events.GenerationCompletedEvent:
		c.metrics.RecordGeneration(e.Duration.Seconds(), true)

	case *events.GenerationFailedEvent:
		c.metrics.RecordGeneration(0, false)

	case *events.ArtifactRenderedEvent:
		c.metrics.RecordArtifact(e.Duration.Seconds())

	case *events.ArtifactRenderFailedEvent:
		c.metrics.RecordRenderError()
	}
}
