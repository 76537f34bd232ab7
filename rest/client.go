package rest

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rickgao/paradex-data/sign"
)

// Environment base URLs.
const (
	ProdURL    = "https://api.prod.paradex.trade"
	TestnetURL = "https://api.testnet.paradex.trade"
)

// Client provides access to the venue's REST API. Public endpoints
// work without credentials; private ones need a signing pipeline for
// the JWT auth flow.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration

	pipeline      *sign.Pipeline
	tokenLifetime time.Duration

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. pipeline may be nil for a
// public-data client.
func NewClient(baseURL string, pipeline *sign.Pipeline, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:        slog.Default(),
		maxRetries:    3,
		retryBackoff:  time.Second,
		pipeline:      pipeline,
		tokenLifetime: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenLifetime sets the requested JWT validity window.
func WithTokenLifetime(d time.Duration) ClientOption {
	return func(c *Client) {
		c.tokenLifetime = d
	}
}
