package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

// DefaultBaseURL is the public audio-analysis API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// maxBodyBytes caps analysis documents; real ones are a few hundred KB.
const maxBodyBytes = 16 << 20

// ErrNotFound is returned when the provider has no analysis for a track.
var ErrNotFound = errors.New("analysis not found")

// TokenSource yields a bearer token per request, allowing refresh.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken wraps a fixed token as a TokenSource.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// HTTPClient fetches analysis documents over HTTP.
type HTTPClient struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource replaces the static token with a dynamic source.
func WithTokenSource(src TokenSource) Option {
	return func(c *HTTPClient) {
		if src != nil {
			c.tokens = src
		}
	}
}

// NewHTTPClient creates a client for baseURL authenticating with token.
// An empty baseURL uses DefaultBaseURL.
func NewHTTPClient(baseURL, token string, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     StaticToken(strings.TrimSpace(token)),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetAnalysis fetches and decodes the analysis document for trackID.
func (c *HTTPClient) GetAnalysis(ctx context.Context, trackID string) (*analysis.FeatureSet, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return nil, errors.New("track id must not be empty")
	}

	token, err := c.tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain token: %w", err)
	}
	if token == "" {
		return nil, errors.New("provider token required")
	}

	endpoint := c.baseURL + "/audio-analysis/" + url.PathEscape(trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("track %s: %w", trackID, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("audio-analysis returned %d (latency=%v)", resp.StatusCode, latency)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	fs, err := analysis.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode analysis for %s: %w", trackID, err)
	}
	return fs, nil
}
