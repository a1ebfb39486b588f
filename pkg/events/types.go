package events

import (
	"time"
)

// This file contains all event type definitions for the generator.
//
// Events are immutable after creation: they represent historical facts
// about what happened in the system and must not be modified after
// being published to the EventBus. All event types use pointer
// receivers for their Event interface methods, and constructors set the
// timestamp so publishers cannot backdate events.
//
// Events are organized into categories:
// - Lifecycle events: generator startup and shutdown
// - Generation events: generation cycles over the configured templates
// - Artifact events: individual template render outcomes

// -----------------------------------------------------------------------------
// Event Type Constants
// -----------------------------------------------------------------------------

const (
	// Lifecycle event types.
	EventTypeGeneratorStarted  = "generator.started"
	EventTypeGeneratorShutdown = "generator.shutdown"

	// Generation event types.
	EventTypeGenerationTriggered = "generation.triggered"
	EventTypeGenerationCompleted = "generation.completed"
	EventTypeGenerationFailed    = "generation.failed"

	// Artifact event types.
	EventTypeArtifactRendered     = "artifact.rendered"
	EventTypeArtifactRenderFailed = "artifact.render.failed"
)

// -----------------------------------------------------------------------------
// Lifecycle Events
// -----------------------------------------------------------------------------

// GeneratorStartedEvent is published when the generator has completed
// startup and is ready to process generation triggers.
type GeneratorStartedEvent struct {
	TemplateCount int
	timestamp     time.Time
}

// NewGeneratorStartedEvent creates a new GeneratorStartedEvent.
func NewGeneratorStartedEvent(templateCount int) *GeneratorStartedEvent {
	return &GeneratorStartedEvent{
		TemplateCount: templateCount,
		timestamp:     time.Now(),
	}
}

func (e *GeneratorStartedEvent) EventType() string    { return EventTypeGeneratorStarted }
func (e *GeneratorStartedEvent) Timestamp() time.Time { return e.timestamp }

// GeneratorShutdownEvent is published when the generator is shutting
// down gracefully.
type GeneratorShutdownEvent struct {
	Reason    string
	timestamp time.Time
}

// NewGeneratorShutdownEvent creates a new GeneratorShutdownEvent.
func NewGeneratorShutdownEvent(reason string) *GeneratorShutdownEvent {
	return &GeneratorShutdownEvent{
		Reason:    reason,
		timestamp: time.Now(),
	}
}

func (e *GeneratorShutdownEvent) EventType() string    { return EventTypeGeneratorShutdown }
func (e *GeneratorShutdownEvent) Timestamp() time.Time { return e.timestamp }

// -----------------------------------------------------------------------------
// Generation Events
// -----------------------------------------------------------------------------

// GenerationTriggeredEvent requests a generation cycle over all
// configured templates.
type GenerationTriggeredEvent struct {
	Reason    string
	timestamp time.Time
}

// NewGenerationTriggeredEvent creates a new GenerationTriggeredEvent.
func NewGenerationTriggeredEvent(reason string) *GenerationTriggeredEvent {
	return &GenerationTriggeredEvent{
		Reason:    reason,
		timestamp: time.Now(),
	}
}

func (e *GenerationTriggeredEvent) EventType() string    { return EventTypeGenerationTriggered }
func (e *GenerationTriggeredEvent) Timestamp() time.Time { return e.timestamp }

// GenerationCompletedEvent is published when a generation cycle has
// rendered every configured template successfully.
type GenerationCompletedEvent struct {
	ArtifactCount int
	Duration      time.Duration
	timestamp     time.Time
}

// NewGenerationCompletedEvent creates a new GenerationCompletedEvent.
func NewGenerationCompletedEvent(artifactCount int, duration time.Duration) *GenerationCompletedEvent {
	return &GenerationCompletedEvent{
		ArtifactCount: artifactCount,
		Duration:      duration,
		timestamp:     time.Now(),
	}
}

func (e *GenerationCompletedEvent) EventType() string    { return EventTypeGenerationCompleted }
func (e *GenerationCompletedEvent) Timestamp() time.Time { return e.timestamp }

// GenerationFailedEvent is published when a generation cycle aborts.
// No artifacts are emitted for a failed cycle.
type GenerationFailedEvent struct {
	TemplateName string
	Error        string
	timestamp    time.Time
}

// NewGenerationFailedEvent creates a new GenerationFailedEvent.
func NewGenerationFailedEvent(templateName, errorMsg string) *GenerationFailedEvent {
	return &GenerationFailedEvent{
		TemplateName: templateName,
		Error:        errorMsg,
		timestamp:    time.Now(),
	}
}

func (e *GenerationFailedEvent) EventType() string    { return EventTypeGenerationFailed }
func (e *GenerationFailedEvent) Timestamp() time.Time { return e.timestamp }

// -----------------------------------------------------------------------------
// Artifact Events
// -----------------------------------------------------------------------------

// ArtifactRenderedEvent is published for each template rendered
// successfully during a generation cycle.
type ArtifactRenderedEvent struct {
	TemplateName string
	OutputName   string
	Size         int
	Duration     time.Duration
	timestamp    time.Time
}

// NewArtifactRenderedEvent creates a new ArtifactRenderedEvent.
func NewArtifactRenderedEvent(templateName, outputName string, size int, duration time.Duration) *ArtifactRenderedEvent {
	return &ArtifactRenderedEvent{
		TemplateName: templateName,
		OutputName:   outputName,
		Size:         size,
		Duration:     duration,
		timestamp:    time.Now(),
	}
}

func (e *ArtifactRenderedEvent) EventType() string    { return EventTypeArtifactRendered }
func (e *ArtifactRenderedEvent) Timestamp() time.Time { return e.timestamp }

// ArtifactRenderFailedEvent is published when rendering a single
// template fails.
type ArtifactRenderFailedEvent struct {
	TemplateName string
	Error        string
	timestamp    time.Time
}

// NewArtifactRenderFailedEvent creates a new ArtifactRenderFailedEvent.
func NewArtifactRenderFailedEvent(templateName, errorMsg string) *ArtifactRenderFailedEvent {
	return &ArtifactRenderFailedEvent{
		TemplateName: templateName,
		Error:        errorMsg,
		timestamp:    time.Now(),
	}
}

func (e *ArtifactRenderFailedEvent) EventType() string    { return EventTypeArtifactRenderFailed }
func (e *ArtifactRenderFailedEvent) Timestamp() time.Time { return e.timestamp }
