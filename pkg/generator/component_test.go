package generator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcl-template-gen/pkg/core/config"
	"zcl-template-gen/pkg/events"
	"zcl-template-gen/pkg/metadata"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestStore creates a populated metadata store bound to a session.
func openTestStore(t *testing.T) *metadata.Store {
	t.Helper()

	store, err := metadata.Open(filepath.Join(t.TempDir(), "library.db"), "session-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	pkgID, err := store.InsertPackage(ctx, "/library/cluster.xml", "zcl")
	require.NoError(t, err)
	require.NoError(t, store.BindSession(ctx, pkgID))
	require.NoError(t, store.InsertOptionValue(ctx, pkgID, "defaultResponsePolicy", 0, "always"))
	require.NoError(t, store.InsertOptionValue(ctx, pkgID, "defaultResponsePolicy", 1, "conditional"))

	return store
}

func testConfig(t *testing.T, templates map[string]config.TemplateDef) *config.Config {
	t.Helper()

	return &config.Config{
		Engine:    config.EngineConfig{PollIntervalMs: 1},
		Generator: config.GeneratorConfig{OutputDir: t.TempDir()},
		Templates: templates,
	}
}

// startComponent runs the component event loop for the duration of the test.
func startComponent(t *testing.T, c *Component) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// waitForEvent reads events until one of the wanted type arrives.
func waitForEvent(t *testing.T, sub <-chan events.Event, eventType string) events.Event {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-sub:
			if ev.EventType() == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timeout waiting for event %s", eventType)
		}
	}
}

func TestNew_CompilesTemplates(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t, map[string]config.TemplateDef{
		"cluster-ids": {Template: "{{#iterate count=2}}{{index}}{{/iterate}}", Output: "cluster_ids.h"},
	})

	c, err := New(events.NewEventBus(10), cfg, store, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Engine().TemplateCount())
}

func TestNew_CompilationErrorSurfacesAtConstruction(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t, map[string]config.TemplateDef{
		"broken": {Template: "{{#iterate count=2}}{{index}}", Output: "broken.h"},
	})

	_, err := New(events.NewEventBus(10), cfg, store, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create template engine")
}

func TestComponent_GenerationWritesArtifacts(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t, map[string]config.TemplateDef{
		"cluster-ids": {
			Template: "#define IDS [{{#iterate count=3}}{{index}}{{#not_last}},{{/not_last}}{{/iterate}}]",
			Output:   "cluster_ids.h",
		},
		"policies": {
			Template: `{{lookupOption "defaultResponsePolicy"}}{{#after}}{{lookupOption "defaultResponsePolicy"}}{{/after}}`,
			Output:   "policies.h",
		},
	})

	bus := events.NewEventBus(10)
	sub := bus.Subscribe(50)
	c, err := New(bus, cfg, store, discardLogger())
	require.NoError(t, err)

	bus.Start()
	startComponent(t, c)

	bus.Publish(events.NewGenerationTriggeredEvent("test"))

	ev := waitForEvent(t, sub, events.EventTypeGenerationCompleted)
	completed := ev.(*events.GenerationCompletedEvent)
	assert.Equal(t, 2, completed.ArtifactCount)

	ids, err := os.ReadFile(filepath.Join(cfg.Generator.OutputDir, "cluster_ids.h"))
	require.NoError(t, err)
	assert.Equal(t, "#define IDS [0,1,2]", string(ids))

	// The pre-barrier invocation contributes nothing; the post-barrier one
	// renders from the settled lookup.
	policies, err := os.ReadFile(filepath.Join(cfg.Generator.OutputDir, "policies.h"))
	require.NoError(t, err)
	assert.Equal(t, "always, conditional", string(policies))
}

func TestComponent_RenderFailureAbortsCycle(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t, map[string]config.TemplateDef{
		"good": {Template: "ok", Output: "good.h"},
		"zzz-bad": {
			Template: `{{lookupOption "noSuchCategory"}}`,
			Output:   "bad.h",
		},
	})

	bus := events.NewEventBus(10)
	sub := bus.Subscribe(50)
	c, err := New(bus, cfg, store, discardLogger())
	require.NoError(t, err)

	bus.Start()
	startComponent(t, c)

	bus.Publish(events.NewGenerationTriggeredEvent("test"))

	ev := waitForEvent(t, sub, events.EventTypeGenerationFailed)
	failed := ev.(*events.GenerationFailedEvent)
	assert.Equal(t, "zzz-bad", failed.TemplateName)

	// All-or-nothing: the earlier successful render must not be written.
	_, err = os.Stat(filepath.Join(cfg.Generator.OutputDir, "good.h"))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreSource_ConvertsValues(t *testing.T) {
	store := openTestStore(t)
	source := NewOptionSource(store)
	ctx := context.Background()

	pkgID, err := source.ResolveOwningPackage(ctx)
	require.NoError(t, err)

	values, err := source.FetchOptionValues(ctx, pkgID, "defaultResponsePolicy")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, int64(0), values[0].Code)
	assert.Equal(t, "always", values[0].Label)

	specific, err := source.FetchSpecificOptionValue(ctx, pkgID, "defaultResponsePolicy", "conditional")
	require.NoError(t, err)
	require.NotNil(t, specific)
	assert.Equal(t, int64(1), specific.Code)

	missing, err := source.FetchSpecificOptionValue(ctx, pkgID, "defaultResponsePolicy", "never")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
