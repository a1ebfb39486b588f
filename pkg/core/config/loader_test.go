package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
database:
  path: /var/lib/zcl/zcl.db
  session_ref: session-1
templates:
  cluster-ids:
    template: "{{#iterate count=3}}{{index}}{{/iterate}}"
    output: cluster-ids.h
  endpoint-config:
    template: "#define ENDPOINT_COUNT 1"
`

func TestLoadConfig_ParsesAndAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(sampleYAML)

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/zcl/zcl.db", cfg.Database.Path)
	assert.Equal(t, "session-1", cfg.Database.SessionRef)
	assert.Equal(t, DefaultPollIntervalMs, cfg.Engine.PollIntervalMs)
	assert.Equal(t, DefaultOutputDir, cfg.Generator.OutputDir)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.LogLevel)
	assert.Equal(t, DefaultMetricsPort, cfg.Metrics.Port)
}

func TestLoadConfig_OutputDefaultsToTemplateName(t *testing.T) {
	cfg, err := LoadConfig(sampleYAML)

	require.NoError(t, err)
	assert.Equal(t, "cluster-ids.h", cfg.Templates["cluster-ids"].Output)
	assert.Equal(t, "endpoint-config", cfg.Templates["endpoint-config"].Output)
}

func TestLoadConfig_EmptyYAML(t *testing.T) {
	_, err := LoadConfig("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := LoadConfig("templates: [not: a: map")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	cfg, err := LoadConfig(`
database:
  path: zcl.db
  session_ref: s
engine:
  poll_interval_ms: 25
logging:
  log_level: DEBUG
metrics:
  enabled: true
  port: 9100
templates:
  t:
    template: x
`)

	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Engine.PollIntervalMs)
	assert.Equal(t, "DEBUG", cfg.Logging.LogLevel)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := LoadConfigFile(path)

	require.NoError(t, err)
	assert.Len(t, cfg.Templates, 2)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
