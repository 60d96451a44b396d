package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TokenSource yields the current bearer token, or "" when signed out
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value
type StaticToken string

// Token returns the fixed token
func (t StaticToken) Token() string { return string(t) }

// Client talks to the cheat sheet catalog API
type Client struct {
	baseURL       string
	hc            *http.Client
	http          *resty.Client
	tokens        TokenSource
	timeout       time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	debug         bool
	logger        zerolog.Logger
}

// New constructs a Client for the API rooted at baseURL, e.g. http://localhost:8080/api
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		hc:            &http.Client{},
		tokens:        StaticToken(""),
		timeout:       30 * time.Second,
		maxRetries:    3,
		retryInterval: 200 * time.Millisecond,
		logger:        log.Logger,
	}

	// Auto-enable debug via env variable without changing code.
	if os.Getenv("CHEATSHEETS_DEBUG") == "true" || os.Getenv("DEBUG") == "true" {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.debug {
		transport := c.hc.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		c.hc.Transport = &debugTransport{base: transport, logger: c.logger}
	}

	c.http = resty.NewWithClient(c.hc).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(c.timeout).
		SetDisableWarn(true)

	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	op     string
	method string
	path   string
	query  map[string]string
	body   interface{}
	out    interface{}
}

func (c *Client) idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodPut
}

// do runs one API call, retrying idempotent requests on recoverable failures
func (c *Client) do(ctx context.Context, cl call) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	attempts := 0
	attempt := func() error {
		attempts++
		err := c.once(ctx, cl)
		if err != nil && !IsRecoverable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var err error
	if c.maxRetries > 0 && c.idempotent(cl.method) {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = c.retryInterval
		exp.Multiplier = 2
		exp.MaxInterval = 10 * c.retryInterval
		exp.Reset()

		policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)
		err = backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
			retriesTotal.WithLabelValues(cl.op).Inc()
			c.logger.Warn().Err(err).Str("operation", cl.op).Dur("wait", wait).Msg("Retrying catalog request")
		})
	} else {
		err = c.once(ctx, cl)
	}

	requestsTotal.WithLabelValues(cl.op, outcome(err)).Inc()
	requestDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Debug().Err(err).Str("operation", cl.op).Int("attempts", attempts).Msg("Catalog request failed")
	}
	return err
}

func (c *Client) once(ctx context.Context, cl call) error {
	req := c.http.R().SetContext(ctx)
	if token := c.tokens.Token(); token != "" {
		req.SetAuthToken(token)
	}
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return newNetworkError(cl.op, err)
	}

	if resp.StatusCode() == http.StatusNoContent {
		return nil
	}

	if resp.IsError() {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		return newHTTPError(cl.op, resp.StatusCode(), body.Message)
	}

	if cl.out != nil {
		if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
			return newDecodeError(cl.op, err)
		}
	}
	return nil
}
