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

// Package config provides data models for the generator configuration.
//
// These models represent the structure of the configuration YAML passed to
// the generator binary: the metadata database, the templates to render, and
// the ambient engine/logging/metrics settings.
package config

// Config is the root configuration structure.
type Config struct {
	// Database locates the cluster-library metadata store.
	Database DatabaseConfig `yaml:"database"`

	// Engine configures the template engine.
	Engine EngineConfig `yaml:"engine"`

	// Generator contains generation-level settings (output directory, etc.).
	Generator GeneratorConfig `yaml:"generator"`

	// Logging configures logging behavior.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Templates maps artifact names to their template definitions.
	//
	// Example:
	//   cluster-ids:
	//     template: "{{#iterate count=3}}{{index}}{{/iterate}}"
	//     output: cluster-ids.h
	Templates map[string]TemplateDef `yaml:"templates"`
}

// DatabaseConfig locates the metadata store and generation session.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// SessionRef identifies the generation session whose owning package
	// the option helpers resolve against.
	SessionRef string `yaml:"session_ref"`
}

// EngineConfig tunes the template engine.
type EngineConfig struct {
	// PollIntervalMs is the barrier settlement polling interval in
	// milliseconds. Zero selects the engine default.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// GeneratorConfig contains generation-level settings.
type GeneratorConfig struct {
	// OutputDir is the directory rendered artifacts are written to.
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// LogLevel is one of ERROR, WARNING, INFO, DEBUG (case-insensitive).
	LogLevel string `yaml:"log_level"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics HTTP server on.
	Enabled bool `yaml:"enabled"`

	// Port is the metrics server port.
	Port int `yaml:"port"`
}

// TemplateDef is one artifact template.
type TemplateDef struct {
	// Template is the template text.
	Template string `yaml:"template"`

	// Output is the artifact filename. Defaults to the template name.
	Output string `yaml:"output"`
}
