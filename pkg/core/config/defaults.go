package config

// Default values for configuration fields.
const (
	// DefaultPollIntervalMs is the default barrier polling interval.
	DefaultPollIntervalMs = 10

	// DefaultOutputDir is the default artifact output directory.
	DefaultOutputDir = "generated"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "INFO"

	// DefaultMetricsPort is the default port for Prometheus metrics.
	DefaultMetricsPort = 9090
)

// setDefaults applies default values to unset configuration fields.
// This modifies the config in-place and should be called after parsing
// the configuration and before validation.
func setDefaults(cfg *Config) {
	if cfg.Engine.PollIntervalMs == 0 {
		cfg.Engine.PollIntervalMs = DefaultPollIntervalMs
	}
	if cfg.Generator.OutputDir == "" {
		cfg.Generator.OutputDir = DefaultOutputDir
	}
	if cfg.Logging.LogLevel == "" {
		cfg.Logging.LogLevel = DefaultLogLevel
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultMetricsPort
	}

	// Artifact filenames default to their template names
	for name, def := range cfg.Templates {
		if def.Output == "" {
			def.Output = name
			cfg.Templates[name] = def
		}
	}
}
