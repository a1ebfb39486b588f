package config

import (
	"fmt"
	"strings"
)

// ValidateStructure performs basic structural validation on the configuration.
// Validates required fields, value ranges, and non-empty template
// definitions. Does NOT validate template syntax; the engine reports
// compilation errors with proper context.
func ValidateStructure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := validateEngine(&cfg.Engine); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if err := validateMetrics(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if err := validateTemplates(cfg.Templates); err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	return nil
}

// validateDatabase validates the metadata store configuration.
func validateDatabase(db *DatabaseConfig) error {
	if db.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if db.SessionRef == "" {
		return fmt.Errorf("session_ref cannot be empty")
	}
	return nil
}

// validateEngine validates the engine configuration.
func validateEngine(ec *EngineConfig) error {
	if ec.PollIntervalMs < 1 {
		return fmt.Errorf("poll_interval_ms must be at least 1, got %d", ec.PollIntervalMs)
	}
	return nil
}

// validateLogging validates the logging configuration.
func validateLogging(lc *LoggingConfig) error {
	switch strings.ToUpper(strings.TrimSpace(lc.LogLevel)) {
	case "ERROR", "WARNING", "WARN", "INFO", "DEBUG":
		return nil
	default:
		return fmt.Errorf("log_level must be one of ERROR, WARNING, INFO, DEBUG, got %q", lc.LogLevel)
	}
}

// validateMetrics validates the metrics configuration.
func validateMetrics(mc *MetricsConfig) error {
	if !mc.Enabled {
		return nil
	}
	if mc.Port < 1 || mc.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", mc.Port)
	}
	return nil
}

// validateTemplates validates the template definitions.
func validateTemplates(templates map[string]TemplateDef) error {
	if len(templates) == 0 {
		return fmt.Errorf("at least one template must be defined")
	}

	for name, def := range templates {
		if name == "" {
			return fmt.Errorf("template name cannot be empty")
		}
		if def.Template == "" {
			return fmt.Errorf("template %q has no template text", name)
		}
		if strings.ContainsAny(def.Output, "/\\") {
			return fmt.Errorf("template %q output %q must be a bare filename", name, def.Output)
		}
	}

	return nil
}
