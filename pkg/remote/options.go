package remote

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option mutates the Client during New().
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client, e.g. one backed by a test server transport
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.hc = hc
		return nil
	}
}

// WithTimeout bounds each HTTP attempt
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("negative timeout")
		}
		c.timeout = d
		return nil
	}
}

// WithRetries sets how many times an idempotent request is retried on a recoverable error
func WithRetries(n uint64) Option {
	return func(c *Client) error {
		c.maxRetries = n
		return nil
	}
}

// WithRetryInterval sets the first backoff delay; later delays double up to ten times it
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("retry interval must be positive")
		}
		c.retryInterval = d
		return nil
	}
}

// WithTokenSource supplies the bearer token for every request
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) error {
		if ts == nil {
			return fmt.Errorf("nil token source")
		}
		c.tokens = ts
		return nil
	}
}

// WithToken uses a fixed bearer token
func WithToken(token string) Option {
	return WithTokenSource(StaticToken(token))
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithDebugLogging logs every request and response when enabled is true
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}
