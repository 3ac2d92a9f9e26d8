package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/endpointkit/auth"
	"github.com/jonwraymond/endpointkit/config"
	"github.com/jonwraymond/endpointkit/health"
	"github.com/jonwraymond/endpointkit/observe"
	"github.com/jonwraymond/endpointkit/policy"
)

// ErrMissingName means Config.Name was empty at construction.
var ErrMissingName = errors.New("endpoint: endpoint name is required")

// Config configures a Client. Name and Lookup are required; everything
// else has a working default.
type Config struct {
	// Name is the endpoint type name. It keys the transport factory and
	// derives the default address lookup key.
	Name string

	// AddressKey is the configuration key holding the base address.
	// Default: "<lowercase name>.base_url".
	AddressKey string

	// Lookup resolves the base address. Required.
	Lookup config.Lookup

	// Factory produces the transport entry point. Default: a fresh
	// HTTPFactory owned by this client.
	Factory Factory

	// Logger receives structured events. Default: discard.
	Logger observe.Logger

	// Tracer wraps each call in a span. Default: noop.
	Tracer observe.Tracer

	// Metrics records call telemetry. Default: noop.
	Metrics observe.CallMetrics
}

// Client is the outbound-call shell for one logical endpoint.
//
// All methods are safe for concurrent use. Configuration methods return
// the same Client for fluent chaining.
type Client struct {
	name    string
	baseURL *url.URL
	meta    observe.EndpointMeta

	transport Doer
	logger    observe.Logger
	tracer    observe.Tracer
	metrics   observe.CallMetrics

	headers *headerSet

	credMu sync.RWMutex
	cred   auth.Credential

	// mu serializes configuration changes and pipeline rebuilds. The
	// happy path never takes it; calls only load the pipeline pointer.
	mu       sync.Mutex
	cfg      policy.Config
	breaker  *policy.Breaker
	pipeline atomic.Pointer[policy.Pipeline]
}

// New constructs a Client for cfg.Name, resolving the base address from
// cfg.Lookup. A missing, blank, or non-absolute address is a
// configuration error and fails construction.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, ErrMissingName
	}

	key := cfg.AddressKey
	if key == "" {
		key = strings.ToLower(cfg.Name) + ".base_url"
	}

	baseURL, err := config.Resolve(cfg.Lookup, key)
	if err != nil {
		return nil, err
	}

	factory := cfg.Factory
	if factory == nil {
		factory = NewHTTPFactory()
	}
	transport, err := factory.Transport(cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("endpoint: transport for %q: %w", cfg.Name, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger{}
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = observe.NopTracer()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.NopCallMetrics{}
	}

	meta := observe.EndpointMeta{Name: cfg.Name, Address: baseURL.String()}

	c := &Client{
		name:      cfg.Name,
		baseURL:   baseURL,
		meta:      meta,
		transport: transport,
		logger:    logger.WithEndpoint(meta),
		tracer:    tracer,
		metrics:   metrics,
		headers:   newHeaderSet(),
		cfg:       policy.DefaultConfig(),
	}
	c.breaker = policy.NewBreaker(
		c.cfg.FailureThreshold,
		c.cfg.BreakDuration,
		policy.WithStateChange(c.onBreakerChange),
	)
	c.pipeline.Store(policy.Build(c.cfg, c.breaker))

	c.logger.Info(context.Background(), "endpoint client configured",
		observe.Field{Key: "address_key", Value: key},
	)
	return c, nil
}

// Name returns the endpoint type name.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the resolved base address.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// WithHeaders merges headers into the custom header set, last write wins
// per key. An empty or nil map is a no-op with a warning. Header changes
// never rebuild the pipeline.
func (c *Client) WithHeaders(headers map[string]string) *Client {
	if len(headers) == 0 {
		c.logger.Warn(context.Background(), "ignoring empty header set")
		return c
	}

	c.headers.merge(headers)
	c.logger.Debug(context.Background(), "headers added",
		observe.Field{Key: "count", Value: len(headers)},
	)
	return c
}

// WithAuthorization sets a bearer authorization value, replacing any
// previous credential. A blank token is a no-op with a warning. If the
// token is a JWT that has already expired a warning is logged but the
// credential is still set.
func (c *Client) WithAuthorization(token string) *Client {
	cred, err := auth.Bearer(token)
	if err != nil {
		c.logger.Warn(context.Background(), "ignoring blank authorization token")
		return c
	}

	if exp, ok := auth.TokenExpiry(token); ok && exp.Before(time.Now()) {
		c.logger.Warn(context.Background(), "bearer token is already expired",
			observe.Field{Key: "expired_at", Value: exp},
		)
	}

	c.setCredential(cred)
	c.logger.Info(context.Background(), "authorization configured",
		observe.Field{Key: "scheme", Value: cred.Scheme()},
	)
	return c
}

// WithBasicAuth sets a basic authorization value, replacing any previous
// credential. A blank user or password is a no-op with a warning.
func (c *Client) WithBasicAuth(user, password string) *Client {
	cred, err := auth.Basic(user, password)
	if err != nil {
		c.logger.Warn(context.Background(), "ignoring blank basic-auth credentials")
		return c
	}

	c.setCredential(cred)
	c.logger.Info(context.Background(), "authorization configured",
		observe.Field{Key: "scheme", Value: cred.Scheme()},
	)
	return c
}

// WithRetryPolicy enables retry with count retries, a base delay in
// seconds, and constant or exponential backoff. Negative input is a
// validation error: the previous configuration and pipeline stay active.
func (c *Client) WithRetryPolicy(count, delaySeconds int, exponential bool) (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := c.cfg
	candidate.RetryEnabled = true
	candidate.RetryCount = count
	candidate.RetryDelay = time.Duration(delaySeconds) * time.Second
	candidate.ExponentialBackoff = exponential

	if err := candidate.Validate(); err != nil {
		c.logger.Error(context.Background(), "rejecting retry policy",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return c, err
	}

	c.cfg = candidate
	c.rebuildLocked()
	c.logger.Info(context.Background(), "retry policy configured",
		observe.Field{Key: "count", Value: count},
		observe.Field{Key: "delay_seconds", Value: delaySeconds},
		observe.Field{Key: "exponential", Value: exponential},
	)
	return c, nil
}

// WithCircuitBreaker enables circuit breaking with the given consecutive
// failure threshold and break duration in seconds. Non-positive input is
// a validation error: the previous configuration and pipeline stay
// active. Reconfiguring preserves current breaker state and counters.
func (c *Client) WithCircuitBreaker(threshold, breakSeconds int) (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := c.cfg
	candidate.CircuitBreakerEnabled = true
	candidate.FailureThreshold = threshold
	candidate.BreakDuration = time.Duration(breakSeconds) * time.Second

	if err := candidate.Validate(); err != nil {
		c.logger.Error(context.Background(), "rejecting circuit breaker policy",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return c, err
	}

	c.cfg = candidate
	c.breaker.Configure(threshold, candidate.BreakDuration)
	c.rebuildLocked()
	c.logger.Info(context.Background(), "circuit breaker configured",
		observe.Field{Key: "failure_threshold", Value: threshold},
		observe.Field{Key: "break_seconds", Value: breakSeconds},
	)
	return c, nil
}

// WithTimeout enables a per-attempt timeout of the given seconds.
// Non-positive input falls back to the 30s default with a warning rather
// than failing.
func (c *Client) WithTimeout(seconds int) *Client {
	effective := time.Duration(seconds) * time.Second
	if seconds <= 0 {
		c.logger.Warn(context.Background(), "invalid timeout, using default",
			observe.Field{Key: "requested_seconds", Value: seconds},
			observe.Field{Key: "default", Value: policy.DefaultTimeout.String()},
		)
		effective = policy.DefaultTimeout
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg.TimeoutEnabled = true
	c.cfg.Timeout = effective
	c.rebuildLocked()
	c.logger.Info(context.Background(), "timeout configured",
		observe.Field{Key: "timeout", Value: effective.String()},
	)
	return c
}

// Do dispatches one logical call through the current pipeline: method
// and path relative to the base address, custom headers and the current
// authorization attached per attempt. A failure-classified outcome
// (transport error, cancellation, timeout, 5xx/408 status, breaker
// rejection) is returned as the error; any other response is returned to
// the caller with its body open.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("endpoint: reading request body: %w", err)
		}
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("endpoint: invalid path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	return c.dispatch(ctx, method, func(ctx context.Context) (*http.Request, error) {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		return http.NewRequestWithContext(ctx, method, target.String(), rd)
	})
}

// Execute dispatches a caller-built request through the current pipeline.
// The request body, if any, is read once up front so it can be replayed on
// every attempt; the client's custom headers and current authorization are
// applied on top of the request's own headers.
func (c *Client) Execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("endpoint: reading request body: %w", err)
		}
	}

	return c.dispatch(ctx, req.Method, func(ctx context.Context) (*http.Request, error) {
		attempt := req.Clone(ctx)
		if payload != nil {
			attempt.Body = io.NopCloser(bytes.NewReader(payload))
			attempt.ContentLength = int64(len(payload))
		}
		return attempt, nil
	})
}

func (c *Client) dispatch(ctx context.Context, operation string, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	meta := c.meta
	meta.Operation = operation
	ctx, span := c.tracer.StartSpan(ctx, meta)
	start := time.Now()

	hdrs := c.headers.snapshot()
	cred := c.credential()

	var respMu sync.Mutex
	var resp *http.Response
	attempts := 0

	execErr := c.pipeline.Load().Execute(ctx, func(ctx context.Context) error {
		respMu.Lock()
		attempts++
		respMu.Unlock()

		req, err := build(ctx)
		if err != nil {
			return err
		}
		for k, v := range hdrs {
			req.Header.Set(k, v)
		}
		if !cred.IsZero() {
			req.Header.Set("Authorization", cred.HeaderValue())
		}

		r, err := c.transport.Do(req)
		if err != nil {
			return err
		}
		if policy.FailureStatus(r.StatusCode) {
			// Drain so the connection can be reused for the next attempt.
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			return &policy.StatusError{StatusCode: r.StatusCode, Status: r.Status}
		}

		respMu.Lock()
		defer respMu.Unlock()
		if resp != nil {
			// An attempt the timeout guard abandoned finished late.
			r.Body.Close()
			return nil
		}
		resp = r
		return nil
	})

	c.tracer.EndSpan(span, execErr)

	respMu.Lock()
	result := resp
	calls := attempts
	respMu.Unlock()

	c.metrics.RecordCall(ctx, meta, time.Since(start), calls, execErr)

	if execErr != nil {
		switch {
		case errors.Is(execErr, policy.ErrCircuitOpen):
			c.logger.Warn(ctx, "call rejected by open circuit breaker",
				observe.Field{Key: "operation", Value: meta.Operation},
			)
		case errors.Is(execErr, policy.ErrTimeout):
			c.metrics.RecordTimeout(ctx, meta)
			c.logger.Warn(ctx, "call attempt exceeded timeout",
				observe.Field{Key: "operation", Value: meta.Operation},
			)
		default:
			c.logger.Error(ctx, "call failed",
				observe.Field{Key: "operation", Value: meta.Operation},
				observe.Field{Key: "error", Value: execErr.Error()},
			)
		}
		return nil, execErr
	}
	return result, nil
}

// Check reports endpoint health from the circuit breaker's point of
// view: closed is healthy, half-open degraded, open unhealthy.
func (c *Client) Check(ctx context.Context) health.Result {
	snap := c.breaker.Snapshot()

	var r health.Result
	switch snap.State {
	case policy.StateOpen:
		r = health.Unhealthy("circuit breaker open")
	case policy.StateHalfOpen:
		r = health.Degraded("circuit breaker probing recovery")
	default:
		r = health.Healthy("circuit breaker closed")
	}
	r.Details = map[string]any{
		"endpoint":             c.name,
		"consecutive_failures": snap.ConsecutiveFailures,
	}
	return r
}

// Breaker returns a snapshot of the circuit breaker.
func (c *Client) Breaker() policy.BreakerSnapshot {
	return c.breaker.Snapshot()
}

func (c *Client) rebuildLocked() {
	c.pipeline.Store(policy.Build(c.cfg, c.breaker, policy.WithRetryObserver(c.onRetry)))
}

func (c *Client) onRetry(retry int, err error, delay time.Duration) {
	ctx := context.Background()
	c.metrics.RecordRetry(ctx, c.meta)
	if errors.Is(err, policy.ErrTimeout) {
		c.metrics.RecordTimeout(ctx, c.meta)
	}
	c.logger.Info(ctx, "retrying call",
		observe.Field{Key: "retry", Value: retry},
		observe.Field{Key: "delay", Value: delay.String()},
		observe.Field{Key: "error", Value: err.Error()},
	)
}

func (c *Client) onBreakerChange(from, to policy.State) {
	ctx := context.Background()
	c.metrics.RecordBreakerTransition(ctx, c.meta, from.String(), to.String())

	switch to {
	case policy.StateOpen:
		c.logger.Warn(ctx, "circuit breaker opened",
			observe.Field{Key: "from", Value: from.String()},
		)
	case policy.StateHalfOpen:
		c.logger.Info(ctx, "circuit breaker half-open")
	case policy.StateClosed:
		c.logger.Info(ctx, "circuit breaker reset")
	}
}

func (c *Client) setCredential(cred auth.Credential) {
	c.credMu.Lock()
	c.cred = cred
	c.credMu.Unlock()
}

func (c *Client) credential() auth.Credential {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.cred
}

var _ health.Checker = (*Client)(nil)
