package config

const (
	defaultIndexDir          = "~/.local/share/flickbridge/index"
	defaultLogDir            = "~/.local/share/flickbridge/logs"
	defaultFlickrBaseURL     = "https://api.flickr.com/services/rest"
	defaultFlickrTimeout     = 30
	defaultCommonsAPIURL     = "https://commons.wikimedia.org/w/api.php"
	defaultCommonsUserAgent  = "flickbridge/dev"
	defaultCommonsTimeout    = 60
	defaultScannerWorkers    = 4
	defaultReconcileWorkers  = 4
	defaultRatePerSecond     = 2.0
	defaultRetryAttempts     = 3
	defaultRetryBaseMilli    = 1000
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IndexDir: defaultIndexDir,
			LogDir:   defaultLogDir,
		},
		Flickr: Flickr{
			BaseURL:        defaultFlickrBaseURL,
			TimeoutSeconds: defaultFlickrTimeout,
		},
		Commons: Commons{
			APIURL:         defaultCommonsAPIURL,
			UserAgent:      defaultCommonsUserAgent,
			TimeoutSeconds: defaultCommonsTimeout,
		},
		Scanner: Scanner{
			Workers: defaultScannerWorkers,
		},
		Reconcile: Reconcile{
			Workers:        defaultReconcileWorkers,
			RatePerSecond:  defaultRatePerSecond,
			RetryAttempts:  defaultRetryAttempts,
			RetryBaseMilli: defaultRetryBaseMilli,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
