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

// Package events provides the pub/sub event bus that coordinates the
// generation pipeline components.
//
// Events are fire-and-forget: publishers never block on slow consumers,
// and subscribers that lag simply miss events. The bus buffers events
// published before Start() so that components wired up during startup
// never lose the initial trigger.
package events

import (
	"sync"
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// EventType returns a unique identifier for this event type.
	// Convention: use dot-notation like "generation.triggered" or
	// "artifact.rendered".
	EventType() string

	// Timestamp returns when this event occurred.
	Timestamp() time.Time
}

// EventBus provides centralized pub/sub coordination between the
// generator, metrics, and command-line components.
//
// EventBus is thread-safe and can be used concurrently from multiple
// goroutines.
//
// Startup coordination: events published before Start() is called are
// buffered and replayed after Start(). This prevents the initial
// generation trigger from racing component initialization.
type EventBus struct {
	subscribers []chan Event
	mu          sync.RWMutex

	started        bool
	startMu        sync.Mutex
	preStartBuffer []Event
}

// NewEventBus creates a new EventBus.
//
// The bus starts in buffering mode - events published before Start() is
// called will be buffered and replayed when Start() is invoked.
//
// The capacity parameter sets the initial buffer size for pre-start
// events. Recommended: 100 for most applications.
func NewEventBus(capacity int) *EventBus {
	return &EventBus{
		subscribers:    make([]chan Event, 0),
		started:        false,
		preStartBuffer: make([]Event, 0, capacity),
	}
}

// Publish sends an event to all subscribers.
//
// If Start() has not been called yet, the event is buffered and will be
// replayed when Start() is invoked.
//
// After Start() is called, this is a non-blocking operation. If a
// subscriber's channel is full, the event is dropped for that subscriber
// to prevent slow consumers from blocking the entire system.
//
// Returns the number of subscribers that successfully received the event.
// Returns 0 if the event was buffered (before Start()).
func (b *EventBus) Publish(event Event) int {
	b.startMu.Lock()
	if !b.started {
		b.preStartBuffer = append(b.preStartBuffer, event)
		b.startMu.Unlock()
		return 0
	}
	b.startMu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()

	sent := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
			sent++
		default:
			// Channel full, subscriber is lagging - drop event
		}
	}
	return sent
}

// Subscribe creates a new subscription to the event bus.
//
// The returned channel will receive all events published to the bus.
// The bufferSize parameter controls the channel buffer size - larger
// buffers reduce the chance of dropped events for slow consumers.
//
// The returned channel is read-only and will never be closed. To stop
// receiving events, the subscriber should stop reading and allow the
// channel to be garbage collected.
func (b *EventBus) Subscribe(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Start releases all buffered events and switches the bus to normal
// operation mode.
//
// This method should be called after all components have subscribed to
// the bus during application startup.
//
// Behavior:
//  1. Marks the bus as started
//  2. Replays all buffered events to subscribers in order
//  3. Clears the buffer
//  4. All subsequent Publish() calls go directly to subscribers
//
// This method is idempotent - calling it multiple times has no
// additional effect. Thread-safe and can be called concurrently with
// Publish() and Subscribe().
func (b *EventBus) Start() {
	b.startMu.Lock()
	defer b.startMu.Unlock()

	if b.started {
		return
	}

	// Mark as started (must be done before replaying to avoid recursion)
	b.started = true

	if len(b.preStartBuffer) > 0 {
		b.mu.RLock()
		subscribers := b.subscribers
		b.mu.RUnlock()

		for _, event := range b.preStartBuffer {
			for _, ch := range subscribers {
				select {
				case ch <- event:
				default:
					// Channel full - drop event (same behavior as normal Publish)
				}
			}
		}

		b.preStartBuffer = nil
	}
}
