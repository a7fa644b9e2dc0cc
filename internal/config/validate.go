package config

import (
	"errors"
	"fmt"
)

var knownProcessors = map[string]struct{}{
	ProcessorPublicAPIQueries:   {},
	ProcessorPublicCSVDownloads: {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnalytics(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.AnalyticsDir == "" {
		return errors.New("paths.analytics_dir must be set")
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	for _, name := range c.Analytics.Processors {
		if _, ok := knownProcessors[name]; !ok {
			return fmt.Errorf("analytics.processors: unknown processor %q", name)
		}
	}
	if c.Analytics.ClaimConcurrency > 64 {
		return errors.New("analytics.claim_concurrency must be 64 or less")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
