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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"zcl-template-gen/pkg/core/config"
	"zcl-template-gen/pkg/events"
	"zcl-template-gen/pkg/generator"
	genmetrics "zcl-template-gen/pkg/generator/metrics"
	"zcl-template-gen/pkg/metadata"
	"zcl-template-gen/pkg/metrics"
)

// run wires the components together and executes one generation cycle.
//
// Startup order matters: every component subscribes to the EventBus
// before bus.Start() so the buffered startup trigger reaches all of
// them. The cycle's outcome event ends the run; the components shut
// down via context cancellation.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := metadata.Open(cfg.Database.Path, cfg.Database.SessionRef)
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	defer store.Close()

	bus := events.NewEventBus(100)

	registry := prometheus.NewRegistry()
	collector := genmetrics.NewComponent(genmetrics.New(registry), bus)
	collector.Start()

	gen, err := generator.New(bus, cfg, store, logger)
	if err != nil {
		return err
	}

	// Outcome subscription for the run loop itself.
	outcome := bus.Subscribe(50)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return gen.Start(gctx)
	})

	g.Go(func() error {
		if err := collector.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), registry)
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	// Watch for the cycle outcome and stop all components once it lands.
	g.Go(func() error {
		for {
			select {
			case ev := <-outcome:
				switch e := ev.(type) {
				case *events.GenerationCompletedEvent:
					logger.Info("Generation cycle finished",
						"artifacts", e.ArtifactCount,
						"duration_ms", e.Duration.Milliseconds())
					cancel()
					return nil
				case *events.GenerationFailedEvent:
					cancel()
					if e.TemplateName != "" {
						return fmt.Errorf("generation failed: template %s: %s", e.TemplateName, e.Error)
					}
					return fmt.Errorf("generation failed: %s", e.Error)
				}
			case <-gctx.Done():
				return nil
			}
		}
	})

	// Buffered until Start(): the trigger reaches the generator no matter
	// how quickly the components come up.
	bus.Publish(events.NewGenerationTriggeredEvent("startup"))
	bus.Start()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
