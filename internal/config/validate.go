package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFlickr(); err != nil {
		return err
	}
	if err := c.validateCommons(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.IndexDir) == "" {
		return errors.New("paths.index_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateFlickr() error {
	if strings.TrimSpace(c.Flickr.BaseURL) == "" {
		return errors.New("flickr.base_url must be set")
	}
	return nil
}

func (c *Config) validateCommons() error {
	if strings.TrimSpace(c.Commons.APIURL) == "" {
		return errors.New("commons.api_url must be set")
	}
	if strings.TrimSpace(c.Commons.UserAgent) == "" {
		return errors.New("commons.user_agent must be set")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Scanner.Workers < 1 {
		return errors.New("scanner.workers must be at least 1")
	}
	if c.Reconcile.Workers < 1 {
		return errors.New("reconcile.workers must be at least 1")
	}
	if c.Reconcile.RatePerSecond <= 0 {
		return errors.New("reconcile.rate_per_second must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
