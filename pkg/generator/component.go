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

// Package generator implements the component that renders embedded C
// artifacts from the configured templates.
//
// The generator subscribes to generation trigger events, renders every
// configured template against the cluster-library metadata store, and
// writes the resulting artifacts to the output directory. A generation
// cycle is all-or-nothing: if any template fails to render, no artifact
// is written for that cycle.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"zcl-template-gen/pkg/core/config"
	"zcl-template-gen/pkg/events"
	"zcl-template-gen/pkg/metadata"
	"zcl-template-gen/pkg/templating"
)

const (
	// EventBufferSize is the size of the event subscription buffer.
	EventBufferSize = 50
)

// artifact is one rendered output pending write.
type artifact struct {
	templateName string
	outputName   string
	content      string
	duration     time.Duration
}

// Component implements the generator component.
//
// It subscribes to GenerationTriggeredEvent, renders all configured
// templates using the template engine and the metadata store, and
// publishes the results via ArtifactRenderedEvent, GenerationCompletedEvent,
// or GenerationFailedEvent.
type Component struct {
	eventBus  *events.EventBus
	eventChan <-chan events.Event // Subscribed in constructor for proper startup synchronization
	engine    *templating.Engine
	config    *config.Config
	source    templating.OptionSource
	logger    *slog.Logger
}

// New creates a new generator component.
//
// All templates are pre-compiled during construction so that syntax
// errors surface at startup rather than on the first trigger. The
// component subscribes to the EventBus here, before EventBus.Start(),
// so buffered startup triggers are never missed.
//
// Returns an error if any configured template fails to compile.
func New(
	eventBus *events.EventBus,
	cfg *config.Config,
	store *metadata.Store,
	logger *slog.Logger,
) (*Component, error) {
	templates := make(map[string]string, len(cfg.Templates))
	for name, def := range cfg.Templates {
		templates[name] = def.Template
	}

	engine, err := templating.New(templates, templating.Options{
		PollInterval: time.Duration(cfg.Engine.PollIntervalMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template engine: %w", err)
	}

	eventChan := eventBus.Subscribe(EventBufferSize)

	return &Component{
		eventBus:  eventBus,
		eventChan: eventChan,
		engine:    engine,
		config:    cfg,
		source:    NewOptionSource(store),
		logger:    logger,
	}, nil
}

// Start begins the generator's event loop.
//
// This method blocks until the context is cancelled. The component is
// already subscribed to the EventBus (subscription happens in New()),
// so this method only processes events:
//   - GenerationTriggeredEvent: renders all configured templates
//
// Returns nil when the context is cancelled (graceful shutdown).
func (c *Component) Start(ctx context.Context) error {
	c.logger.Info("Generator starting", "template_count", c.engine.TemplateCount())
	c.eventBus.Publish(events.NewGeneratorStartedEvent(c.engine.TemplateCount()))

	for {
		select {
		case event := <-c.eventChan:
			c.handleEvent(ctx, event)

		case <-ctx.Done():
			c.logger.Info("Generator shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

// handleEvent processes events from the EventBus.
func (c *Component) handleEvent(ctx context.Context, event events.Event) {
	switch ev := event.(type) {
	case *events.GenerationTriggeredEvent:
		c.handleGenerationTriggered(ctx, ev)
	}
}

// handleGenerationTriggered renders all configured templates.
//
// Templates render in name order so a cycle is deterministic. All
// templates must render before any artifact is written; a render
// failure aborts the cycle with nothing emitted.
func (c *Component) handleGenerationTriggered(ctx context.Context, event *events.GenerationTriggeredEvent) {
	startTime := time.Now()

	c.logger.Info("Generation triggered", "reason", event.Reason)

	names := make([]string, 0, len(c.config.Templates))
	for name := range c.config.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	artifacts := make([]artifact, 0, len(names))
	for _, name := range names {
		renderStart := time.Now()
		rendered, err := c.engine.Render(ctx, name, c.source)
		if err != nil {
			c.publishRenderFailure(name, err)
			return
		}

		artifacts = append(artifacts, artifact{
			templateName: name,
			outputName:   c.config.Templates[name].Output,
			content:      rendered,
			duration:     time.Since(renderStart),
		})
	}

	if err := c.writeArtifacts(artifacts); err != nil {
		c.logger.Error("Artifact write failed", "error", err)
		c.eventBus.Publish(events.NewGenerationFailedEvent("", err.Error()))
		return
	}

	for _, a := range artifacts {
		c.eventBus.Publish(events.NewArtifactRenderedEvent(
			a.templateName,
			a.outputName,
			len(a.content),
			a.duration,
		))
	}

	duration := time.Since(startTime)
	c.logger.Info("Generation completed",
		"artifacts", len(artifacts),
		"duration_ms", duration.Milliseconds())

	c.eventBus.Publish(events.NewGenerationCompletedEvent(len(artifacts), duration))
}

// writeArtifacts writes all rendered artifacts to the output directory.
func (c *Component) writeArtifacts(artifacts []artifact) error {
	outputDir := c.config.Generator.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	for _, a := range artifacts {
		path := filepath.Join(outputDir, a.outputName)
		if err := os.WriteFile(path, []byte(a.content), 0o644); err != nil {
			return fmt.Errorf("failed to write artifact %s: %w", path, err)
		}
	}
	return nil
}

// publishRenderFailure publishes the per-artifact failure and aborts the
// cycle with a GenerationFailedEvent.
func (c *Component) publishRenderFailure(templateName string, err error) {
	c.logger.Error("Template rendering failed",
		"template", templateName,
		"error", err)

	c.eventBus.Publish(events.NewArtifactRenderFailedEvent(templateName, err.Error()))
	c.eventBus.Publish(events.NewGenerationFailedEvent(templateName, err.Error()))
}

// Engine returns the underlying template engine.
//
// This allows the command layer to inspect compiled templates without
// going through the event bus.
func (c *Component) Engine() *templating.Engine {
	return c.engine
}
