package testsupport

import (
	"path/filepath"
	"testing"

	"flickbridge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IndexDir = filepath.Join(base, "index")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Flickr.APIKey = "test"
	cfg.Commons.AccessToken = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithFlickrBaseURL points the Flickr client at a test server.
func WithFlickrBaseURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Flickr.BaseURL = url
	}
}

// WithCommonsAPIURL points the Commons client at a test server.
func WithCommonsAPIURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Commons.APIURL = url
	}
}
