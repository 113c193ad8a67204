package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLyrics(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateSidecar(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateLyrics() error {
	parsed, err := url.Parse(c.Lyrics.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("lyrics.base_url %q must be an absolute URL", c.Lyrics.BaseURL)
	}
	if c.Lyrics.RequestTimeoutSeconds < 0 {
		return errors.New("lyrics.request_timeout_seconds must be positive")
	}
	if c.Lyrics.DurationToleranceSeconds < 0 {
		return errors.New("lyrics.duration_tolerance_seconds must be zero or greater")
	}
	if c.Lyrics.MinSimilarity < 0 || c.Lyrics.MinSimilarity > 1 {
		return errors.New("lyrics.min_similarity must be between 0 and 1")
	}
	if c.Lyrics.MinIntervalMs < 0 {
		return errors.New("lyrics.min_interval_ms must be zero or greater")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > maxRetryAttempts {
		return fmt.Errorf("retry.max_attempts must be between 1 and %d", maxRetryAttempts)
	}
	if c.Retry.InitialBackoffMs < 0 {
		return errors.New("retry.initial_backoff_ms must be zero or greater")
	}
	if c.Retry.MaxBackoffMs < c.Retry.InitialBackoffMs {
		return errors.New("retry.max_backoff_ms must be at least retry.initial_backoff_ms")
	}
	if c.Retry.Multiplier < 1 {
		return errors.New("retry.multiplier must be at least 1")
	}
	return nil
}

func (c *Config) validateSidecar() error {
	switch c.Sidecar.Mode {
	case SidecarModeOverwrite, SidecarModeSkipExisting:
		return nil
	default:
		return fmt.Errorf("sidecar.mode %q is not supported (use %q or %q)", c.Sidecar.Mode, SidecarModeOverwrite, SidecarModeSkipExisting)
	}
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 1 || c.Pipeline.Workers > maxPipelineWorkers {
		return fmt.Errorf("pipeline.workers must be between 1 and %d", maxPipelineWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
