package clinic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the clinic face-recognition service.
type Client struct {
	URL        string
	parsedURL  *url.URL
	httpClient *http.Client
	captureDir string
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request logging.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "clinic").Logger() }
}

// WithCaptureDir enables API response capturing to dir.
func WithCaptureDir(dir string) Option {
	return func(c *Client) { c.captureDir = dir }
}

// New creates a client for the service at rawURL (e.g. http://localhost:5000).
func New(rawURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid clinic URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid clinic URL %q: scheme and host are required", rawURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}

	c := &Client{
		URL:       parsed.String(),
		parsedURL: parsed,
		httpClient: &http.Client{
			Jar: jar,
			// Admin endpoints answer with redirects; the status and Location are
			// inspected instead of followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.captureDir != "" {
		if err := os.MkdirAll(c.captureDir, 0750); err != nil {
			return nil, fmt.Errorf("could not create capture directory: %w", err)
		}
	}
	return c, nil
}

// resolveURL builds a full URL from the base URL and the given path segments.
// If the last segment contains a query string it is split off so JoinPath
// only receives the path portion.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.parsedURL.String()
	}
	last := pathSegments[len(pathSegments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		pathSegments[len(pathSegments)-1] = pathPart
		result := c.parsedURL.JoinPath(pathSegments...)
		result.RawQuery = query
		return result.String()
	}
	return c.parsedURL.JoinPath(pathSegments...).String()
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "(could not read error body)"
	}
	return strings.TrimSpace(string(body))
}

// captureResponse saves the response body to a file if capturing is enabled.
func (c *Client) captureResponse(endpoint string, body []byte) {
	if c.captureDir == "" {
		return
	}

	filename := strings.ReplaceAll(endpoint, "/", "_")
	filename = strings.TrimPrefix(filename, "_")
	timestamp := time.Now().Format("20060102_150405")
	filename = fmt.Sprintf("%s_%s.json", filename, timestamp)

	path := filepath.Join(c.captureDir, filename)

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err == nil {
		body = prettyJSON.Bytes()
	}

	if err := os.WriteFile(path, body, 0600); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("failed to capture response")
	}
}
