package config

import (
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateDensity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a host:port pair: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.TickIntervalMillis > 1000 {
		return fmt.Errorf("playback.tick_interval_ms %d exceeds 1000; the replay loop would be visibly choppy", c.Playback.TickIntervalMillis)
	}
	return nil
}

func (c *Config) validateDensity() error {
	if c.Density.BucketCount > 500 {
		return fmt.Errorf("density.bucket_count %d exceeds 500", c.Density.BucketCount)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
