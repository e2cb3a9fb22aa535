package flickr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flickbridge/internal/services"
)

const (
	defaultBaseURL        = "https://api.flickr.com/services/rest"
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

var (
	// ErrPhotoNotFound reports a photo ID Flickr no longer knows about.
	ErrPhotoNotFound = errors.New("flickr: photo not found")
	// ErrPhotoPrivate reports a photo that is no longer publicly visible.
	ErrPhotoPrivate = errors.New("flickr: photo is private")
)

// Config captures the runtime settings required to talk to the Flickr API.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client calls the Flickr REST API. It implements PhotoSource.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the bounded retry policy.
func WithRetryPolicy(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryMaxAttempts = attempts
		}
		if baseDelay > 0 {
			c.retryBaseDelay = baseDelay
		}
		if maxDelay > 0 {
			c.retryMaxDelay = maxDelay
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewClient constructs a Flickr API client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

// GetPhoto fetches current metadata for the photo ID.
func (c *Client) GetPhoto(ctx context.Context, photoID string) (*PhotoMetadata, error) {
	if strings.TrimSpace(photoID) == "" {
		return nil, errors.New("flickr: photo id required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("flickr: api key required")
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		meta, err := c.getPhotoOnce(ctx, photoID)
		if err == nil {
			return meta, nil
		}
		lastErr = err
		if !services.Retryable(err) {
			return nil, err
		}
		if attempt == c.retryMaxAttempts {
			break
		}
		delay := c.retryBaseDelay << (attempt - 1)
		if delay > c.retryMaxDelay {
			delay = c.retryMaxDelay
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			c.sleeper(delay)
		}
	}
	return nil, lastErr
}

type photoInfoResponse struct {
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Photo   struct {
		ID    string `json:"id"`
		Owner struct {
			NSID      string `json:"nsid"`
			Username  string `json:"username"`
			RealName  string `json:"realname"`
			PathAlias string `json:"path_alias"`
		} `json:"owner"`
		Title       contentField `json:"title"`
		Description contentField `json:"description"`
		License     string       `json:"license"`
		Dates       struct {
			Posted           string `json:"posted"`
			Taken            string `json:"taken"`
			TakenGranularity any    `json:"takengranularity"`
			TakenUnknown     any    `json:"takenunknown"`
		} `json:"dates"`
		URLs struct {
			URL []struct {
				Type    string `json:"type"`
				Content string `json:"_content"`
			} `json:"url"`
		} `json:"urls"`
	} `json:"photo"`
}

type contentField struct {
	Content string `json:"_content"`
}

// Flickr API failure codes for flickr.photos.getInfo.
const (
	flickrCodeNotFound         = 1
	flickrCodePermissionDenied = 2
)

func (c *Client) getPhotoOnce(ctx context.Context, photoID string) (*PhotoMetadata, error) {
	query := url.Values{}
	query.Set("method", "flickr.photos.getInfo")
	query.Set("api_key", c.cfg.APIKey)
	query.Set("photo_id", photoID)
	query.Set("format", "json")
	query.Set("nojsoncallback", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("flickr: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrRemoteFetch, "flickr", "getInfo", photoID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteFetch, "flickr", "getInfo", photoID, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, services.Wrap(services.ErrRemoteFetch, "flickr", "getInfo",
			fmt.Sprintf("%s: http %d", photoID, resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrNotFound, "flickr", "getInfo",
			fmt.Sprintf("%s: http %d", photoID, resp.StatusCode), nil)
	}

	var parsed photoInfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrRemoteFetch, "flickr", "getInfo", photoID, err)
	}
	if parsed.Stat != "ok" {
		switch parsed.Code {
		case flickrCodeNotFound:
			return nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, photoID)
		case flickrCodePermissionDenied:
			return nil, fmt.Errorf("%w: %s", ErrPhotoPrivate, photoID)
		default:
			return nil, services.Wrap(services.ErrRemoteFetch, "flickr", "getInfo",
				fmt.Sprintf("%s: api error %d: %s", photoID, parsed.Code, parsed.Message), nil)
		}
	}

	return parsed.toMetadata()
}

func (r *photoInfoResponse) toMetadata() (*PhotoMetadata, error) {
	photo := r.Photo

	meta := &PhotoMetadata{
		ID: photo.ID,
		Owner: User{
			ID:       photo.Owner.NSID,
			Username: photo.Owner.Username,
			RealName: photo.Owner.RealName,
		},
		Title:       photo.Title.Content,
		Description: photo.Description.Content,
		LicenseID:   photo.License,
	}

	pathSegment := photo.Owner.PathAlias
	if pathSegment == "" {
		pathSegment = photo.Owner.NSID
	}
	meta.Owner.ProfileURL = "https://www.flickr.com/people/" + pathSegment + "/"

	for _, u := range photo.URLs.URL {
		if u.Type == "photopage" {
			meta.PageURL = u.Content
			break
		}
	}
	if meta.PageURL == "" {
		meta.PageURL = fmt.Sprintf("https://www.flickr.com/photos/%s/%s/", pathSegment, photo.ID)
	}

	if posted, err := strconv.ParseInt(photo.Dates.Posted, 10, 64); err == nil {
		meta.DatePosted = time.Unix(posted, 0).UTC()
	}

	if taken := parseDateTaken(photo.Dates.Taken, photo.Dates.TakenGranularity, photo.Dates.TakenUnknown); taken != nil {
		meta.DateTaken = taken
	}

	return meta, nil
}

// parseDateTaken maps the API's taken date and granularity to a DateTaken.
// Granularity values per the Flickr docs: 0 second, 4 month, 6 year, 8 circa.
func parseDateTaken(taken string, granularity, unknown any) *DateTaken {
	if taken == "" || asString(unknown) == "1" {
		return nil
	}
	value, err := time.Parse("2006-01-02 15:04:05", taken)
	if err != nil {
		return nil
	}
	switch asString(granularity) {
	case "", "0":
		return &DateTaken{Value: value, Granularity: GranularitySecond}
	case "4":
		return &DateTaken{Value: value, Granularity: GranularityMonth}
	case "6":
		return &DateTaken{Value: value, Granularity: GranularityYear}
	case "8":
		return &DateTaken{Value: value, Granularity: GranularityCirca}
	default:
		return nil
	}
}

// asString tolerates the API returning granularity fields as either strings
// or numbers.
func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.Itoa(int(val))
	default:
		return ""
	}
}
