package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalytics()
	c.normalizeLogging()
	c.normalizeWorkflow()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AnalyticsDir) == "" {
		c.Paths.AnalyticsDir = defaultAnalyticsDir
	}
	if c.Paths.AnalyticsDir, err = expandPath(c.Paths.AnalyticsDir); err != nil {
		return fmt.Errorf("paths.analytics_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalytics() {
	if len(c.Analytics.Processors) == 0 {
		c.Analytics.Processors = defaultProcessors()
	}
	normalized := make([]string, 0, len(c.Analytics.Processors))
	for _, name := range c.Analytics.Processors {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			normalized = append(normalized, name)
		}
	}
	c.Analytics.Processors = normalized
	if c.Analytics.ClaimConcurrency <= 0 {
		c.Analytics.ClaimConcurrency = defaultClaimConcurrency
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.AnalyticsRunInterval <= 0 {
		c.Workflow.AnalyticsRunInterval = defaultAnalyticsRunInterval
	}
	if c.Workflow.ScheduledScanInterval <= 0 {
		c.Workflow.ScheduledScanInterval = defaultScheduledScanInterval
	}
}
