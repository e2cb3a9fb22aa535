package commons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"flickbridge/internal/sdc"
	"flickbridge/internal/services"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// ErrPageMissing reports a file that does not exist on Commons.
var ErrPageMissing = errors.New("commons: page missing")

// FileData is the structured data read for one file.
type FileData struct {
	PageID     string
	Title      string
	Statements []sdc.Statement
}

// Client is the Commons collaborator interface consumed by the reconciler.
type Client interface {
	GetStructuredData(ctx context.Context, title string) (*FileData, error)
	GetWikitext(ctx context.Context, title string) (string, error)
	AddStatements(ctx context.Context, title string, statements []sdc.Statement, summary string) error
}

// Config captures the runtime settings for the Action API.
type Config struct {
	APIURL         string
	UserAgent      string
	AccessToken    string
	TimeoutSeconds int
}

// HTTPClient implements Client against the live Action API.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)

	// One client is shared by all batch workers; csrfMu guards the token
	// cache and serializes the first token fetch.
	csrfMu    sync.Mutex
	csrfToken string
}

// Option customizes the client.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the bounded retry policy for reads.
func WithRetryPolicy(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *HTTPClient) {
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
	return func(c *HTTPClient) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewHTTPClient constructs a Commons Action API client.
func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &HTTPClient{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NormalizeTitle ensures the File: prefix and space separators Commons
// expects.
func NormalizeTitle(title string) string {
	trimmed := strings.ReplaceAll(strings.TrimSpace(title), "_", " ")
	if trimmed == "" {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "File:") {
		trimmed = "File:" + trimmed
	}
	return trimmed
}

// GetStructuredData reads the mediainfo entity for a file.
func (c *HTTPClient) GetStructuredData(ctx context.Context, title string) (*FileData, error) {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("sites", "commonswiki")
	params.Set("titles", NormalizeTitle(title))
	params.Set("format", "json")

	body, err := c.getWithRetry(ctx, "wbgetentities", params)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Entities map[string]struct {
			ID         string          `json:"id"`
			Title      string          `json:"title"`
			Missing    json.RawMessage `json:"missing"`
			Statements json.RawMessage `json:"statements"`
		} `json:"entities"`
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrRemoteFetch, "commons", "wbgetentities", title, err)
	}
	if parsed.Error != nil {
		return nil, parsed.Error.classify("wbgetentities", title)
	}

	for id, entity := range parsed.Entities {
		if entity.Missing != nil || strings.HasPrefix(id, "-") {
			return nil, fmt.Errorf("%w: %s", ErrPageMissing, title)
		}
		data := &FileData{PageID: entity.ID, Title: entity.Title}
		// Files with no structured data serialize statements as an empty
		// JSON array instead of an object.
		if len(entity.Statements) > 0 && entity.Statements[0] == '{' {
			statements, err := sdc.UnmarshalClaims(entity.Statements)
			if err != nil {
				return nil, services.Wrap(services.ErrRemoteFetch, "commons", "wbgetentities", title, err)
			}
			data.Statements = statements
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPageMissing, title)
}

// GetWikitext reads the current wikitext of a file description page.
func (c *HTTPClient) GetWikitext(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "content")
	params.Set("rvslots", "main")
	params.Set("titles", NormalizeTitle(title))
	params.Set("format", "json")
	params.Set("formatversion", "2")

	body, err := c.getWithRetry(ctx, "wikitext", params)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Query struct {
			Pages []struct {
				Missing   bool `json:"missing"`
				Revisions []struct {
					Slots struct {
						Main struct {
							Content string `json:"content"`
						} `json:"main"`
					} `json:"slots"`
				} `json:"revisions"`
			} `json:"pages"`
		} `json:"query"`
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrRemoteFetch, "commons", "wikitext", title, err)
	}
	if parsed.Error != nil {
		return "", parsed.Error.classify("wikitext", title)
	}
	for _, page := range parsed.Query.Pages {
		if page.Missing {
			return "", fmt.Errorf("%w: %s", ErrPageMissing, title)
		}
		if len(page.Revisions) > 0 {
			return page.Revisions[0].Slots.Main.Content, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPageMissing, title)
}

// AddStatements appends the statements to the file's structured data. The
// payload carries no statement IDs, so nothing existing is touched. Write
// rejections are terminal: the edit may have partially applied, so the
// caller must not retry.
func (c *HTTPClient) AddStatements(ctx context.Context, title string, statements []sdc.Statement, summary string) error {
	if len(statements) == 0 {
		return nil
	}

	token, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	claims, err := sdc.MarshalClaims(statements)
	if err != nil {
		return services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity", title, err)
	}

	form := url.Values{}
	form.Set("action", "wbeditentity")
	form.Set("site", "commonswiki")
	form.Set("title", NormalizeTitle(title))
	form.Set("data", string(claims))
	form.Set("summary", summary)
	form.Set("token", token)
	form.Set("format", "json")

	body, err := c.postOnce(ctx, form)
	if err != nil {
		return err
	}

	var parsed struct {
		Success int       `json:"success"`
		Error   *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity", title, err)
	}
	if parsed.Error != nil {
		return services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity",
			fmt.Sprintf("%s: %s: %s", title, parsed.Error.Code, parsed.Error.Info), nil)
	}
	if parsed.Success != 1 {
		return services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity", title, nil)
	}
	return nil
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) classify(op, title string) error {
	detail := fmt.Sprintf("%s: %s: %s", title, e.Code, e.Info)
	switch e.Code {
	case "maxlag", "ratelimited", "readonly":
		return services.Wrap(services.ErrRemoteFetch, "commons", op, detail, nil)
	default:
		return services.Wrap(services.ErrNotFound, "commons", op, detail, nil)
	}
}

func (c *HTTPClient) csrf(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	if c.csrfToken != "" {
		return c.csrfToken, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("format", "json")

	body, err := c.getWithRetry(ctx, "tokens", params)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Query struct {
			Tokens struct {
				CSRFToken string `json:"csrftoken"`
			} `json:"tokens"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrRemoteFetch, "commons", "tokens", "", err)
	}
	if parsed.Query.Tokens.CSRFToken == "" {
		return "", services.Wrap(services.ErrRemoteFetch, "commons", "tokens", "empty csrf token", nil)
	}
	c.csrfToken = parsed.Query.Tokens.CSRFToken
	return c.csrfToken, nil
}

func (c *HTTPClient) getWithRetry(ctx context.Context, op string, params url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		body, err := c.getOnce(ctx, op, params)
		if err == nil {
			return body, nil
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

func (c *HTTPClient) getOnce(ctx context.Context, op string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("commons: build request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrRemoteFetch, "commons", op, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteFetch, "commons", op, "", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, services.Wrap(services.ErrRemoteFetch, "commons", op,
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrNotFound, "commons", op,
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return body, nil
}

func (c *HTTPClient) postOnce(ctx context.Context, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("commons: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrRemoteWrite, "commons", "wbeditentity",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return body, nil
}

func (c *HTTPClient) decorate(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}
}
