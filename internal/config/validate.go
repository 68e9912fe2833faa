package config

import (
	"errors"
	"fmt"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable. Field lists are checked
// against the ARRIRAW schema so an unknown name fails at load time.
func (c *Config) Validate() error {
	if len(c.SupportedFiles) == 0 {
		return errors.New("supported_files must list at least one extension")
	}
	if len(c.DefaultFields) == 0 {
		return errors.New("default_fields must list at least one field")
	}
	if len(c.MinimalFields) == 0 {
		return errors.New("minimal_fields must list at least one field")
	}
	s, err := c.Schema()
	if err != nil {
		return fmt.Errorf("field sets: %w", err)
	}
	if len(c.Watch.Fields) > 0 {
		if _, err := s.ResolveNames(c.Watch.Fields); err != nil {
			return fmt.Errorf("watch.fields: %w", err)
		}
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 0 {
		return errors.New("batch.workers must be positive")
	}
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	for component, level := range c.Logging.ComponentOverrides {
		if _, ok := validLogLevels[level]; !ok {
			return fmt.Errorf("logging.component_overrides.%s: unsupported value %q", component, level)
		}
	}
	return nil
}
