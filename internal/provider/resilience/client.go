package resilience

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the provider's breaker rejects the call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig configures a map provider HTTP client.
type ClientConfig struct {
	// Name identifies the provider in breaker names and the health registry.
	Name string

	// Timeout bounds each HTTP attempt. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// A route or suggestion list that arrives late is useless, so keep it small.
	MaxRetries uint64

	// InitialInterval and MaxInterval shape the exponential backoff.
	// Defaults: 100ms and 2s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig(Name).
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives success/failure bookkeeping (optional).
	Registry *Registry
}

// DefaultClientConfig returns defaults for map provider clients.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cb,
	}
}

// Client wraps http.Client with a circuit breaker and bounded retries.
type Client struct {
	cfg      ClientConfig
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	registry *Registry
}

// NewClient builds a Client and registers it when cfg.Registry is set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	cb := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cb = *cfg.CircuitBreaker
	}

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		breaker:  NewCircuitBreaker[*http.Response](cb), //nolint:bodyclose // type param, not response
		registry: cfg.Registry,
	}
	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// Do sends req through the breaker, retrying network errors, 5xx and 429
// with exponential backoff. When retries run out on a retryable status the
// final response is returned so callers can map it; an open breaker yields
// ErrCircuitOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var last *http.Response
	keep := func(resp *http.Response) {
		if last != nil && last != resp {
			_ = last.Body.Close()
		}
		last = resp
	}

	err := backoff.Retry(func() error {
		resp, err := c.attempt(ctx, req)
		if resp != nil {
			keep(resp)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		return err
	}, c.policy(ctx))

	switch {
	case err == nil:
		c.recordSuccess()
		return last, nil
	case last != nil && !errors.Is(err, ErrCircuitOpen):
		c.recordFailure(err)
		return last, nil
	default:
		c.recordFailure(err)
		if last != nil {
			_ = last.Body.Close()
		}
		return nil, err
	}
}

func (c *Client) attempt(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if Retryable(resp.StatusCode) {
			return resp, &ServerError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.cfg.Name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.cfg.Name, err)
	}
}

// Retryable reports whether a provider status is worth another attempt.
func Retryable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// ServerError is a retryable provider status.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "provider returned " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the breaker's current state.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.breaker.State()
}

// CircuitBreakerCounts returns the breaker's counts for the current window.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
