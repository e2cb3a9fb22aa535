package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.IndexDir, err = expandPath(c.Paths.IndexDir); err != nil {
		return fmt.Errorf("paths.index_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	if strings.TrimSpace(c.Flickr.BaseURL) == "" {
		c.Flickr.BaseURL = defaultFlickrBaseURL
	}
	if c.Flickr.TimeoutSeconds <= 0 {
		c.Flickr.TimeoutSeconds = defaultFlickrTimeout
	}

	if strings.TrimSpace(c.Commons.APIURL) == "" {
		c.Commons.APIURL = defaultCommonsAPIURL
	}
	if strings.TrimSpace(c.Commons.UserAgent) == "" {
		c.Commons.UserAgent = defaultCommonsUserAgent
	}
	if c.Commons.TimeoutSeconds <= 0 {
		c.Commons.TimeoutSeconds = defaultCommonsTimeout
	}

	if c.Scanner.Workers <= 0 {
		c.Scanner.Workers = defaultScannerWorkers
	}
	if c.Reconcile.Workers <= 0 {
		c.Reconcile.Workers = defaultReconcileWorkers
	}
	if c.Reconcile.RatePerSecond <= 0 {
		c.Reconcile.RatePerSecond = defaultRatePerSecond
	}
	if c.Reconcile.RetryAttempts <= 0 {
		c.Reconcile.RetryAttempts = defaultRetryAttempts
	}
	if c.Reconcile.RetryBaseMilli <= 0 {
		c.Reconcile.RetryBaseMilli = defaultRetryBaseMilli
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return home + trimmed[1:], nil
	}
	return trimmed, nil
}
