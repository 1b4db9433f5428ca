package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAssistant(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTracker() error {
	if c.Tracker.RecentWindow < 1 {
		return errors.New("tracker.recent_window must be at least 1")
	}
	if _, err := loadLocation(c.Tracker.Timezone); err != nil {
		return fmt.Errorf("tracker.timezone: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
		return nil
	}
	return fmt.Errorf("server.mode: unsupported value %q (use debug, release, or test)", c.Server.Mode)
}

func (c *Config) validateAssistant() error {
	if c.Assistant.TimeoutSeconds < 0 {
		return errors.New("assistant.timeout_seconds must be non-negative")
	}
	if c.Assistant.RetryMax < 0 {
		return errors.New("assistant.retry_max must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return errors.New("logging.max_size_mb must be non-negative")
	}
	return nil
}
