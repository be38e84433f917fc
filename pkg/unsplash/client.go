package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "unsplashfetch/pkg/errors"
	"unsplashfetch/pkg/logger"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	AccessKey  string
	APIVersion string
	UserAgent  string
	Timeout    time.Duration
}

// Client talks to the Unsplash API
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new Unsplash API client
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	headers := map[string]string{}
	if opts.APIVersion != "" {
		headers["Accept-Version"] = opts.APIVersion
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		accessKey:  opts.AccessKey,
		headers:    headers,
		logger:     log,
	}
}

// get performs a GET request with the configured headers. A non-nil error is
// always a transport failure; status codes are left to the caller.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      redact(rawURL),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request failed")
	}

	logger.LogRequest(c.logger, req.Method, redact(rawURL), resp.StatusCode, float64(duration.Milliseconds()))
	if remaining := resp.Header.Get("X-Ratelimit-Remaining"); remaining != "" {
		c.logger.DebugWithFields("rate limit status", map[string]interface{}{
			"remaining": remaining,
			"limit":     resp.Header.Get("X-Ratelimit-Limit"),
		})
	}

	return resp, nil
}

// RandomPhoto fetches the metadata of one random photo.
// A non-200 status returns a typed error whose Code is the status.
func (c *Client) RandomPhoto(ctx context.Context) (*Photo, error) {
	resp, err := c.get(ctx, RandomPhotoURL(c.baseURL, c.accessKey))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errs.FromStatusCode(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}

	var photo Photo
	if err := json.Unmarshal(body, &photo); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, errs.Wrap(errs.ErrorTypeParsing, err, "failed to parse photo JSON")
	}

	if photo.URLs.Regular == "" {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "response has no urls.regular")
	}

	c.logger.DebugWithFields("fetched random photo", map[string]interface{}{
		"id":           photo.ID,
		"photographer": photo.User.Username,
	})

	return &photo, nil
}

// Download fetches the raw bytes at imageURL
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errs.FromStatusCode(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read image data")
	}

	c.logger.DebugWithFields("downloaded image", map[string]interface{}{
		"size": len(data),
	})

	return data, nil
}

// redact hides the access key in URLs that are logged
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("client_id") {
		q.Set("client_id", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// String implements fmt.Stringer without exposing the key
func (c *Client) String() string {
	return fmt.Sprintf("unsplash.Client{baseURL: %s}", c.baseURL)
}
