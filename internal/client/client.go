// Package client talks to the remote enhancement, document-generation and feedback service.
package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/types"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const defaultMaxBody = 20 * 1024 * 1024

// Response is a fully buffered service response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// statusError marks a 5xx response as a failure for the circuit breaker
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("service returned status %d", e.status)
}

var errBodyTooLarge = stderrors.New("response body exceeds limit")

// Client calls the six collaborator endpoints
type Client struct {
	cfg       *config.Config
	baseURL   string
	userAgent string
	maxBody   int64
	http      *http.Client
	limiter   *rate.Limiter
	breakers  map[config.Endpoint]*Breaker
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records every call on m
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the service described by cfg
func New(cfg *config.Config, logger *errors.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		baseURL:   strings.TrimRight(cfg.Service.BaseURL, "/"),
		userAgent: cfg.Service.UserAgent,
		maxBody:   cfg.Export.MaxArtifactSize,
		http:      &http.Client{},
		breakers:  make(map[config.Endpoint]*Breaker),
		metrics:   observability.NopMetrics(),
		logger:    logger,
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxBody
	}

	if rl := cfg.Service.RateLimit; rl.Enabled && rl.RequestsPerMin > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(rl.RequestsPerMin)/60.0), max(rl.BurstCapacity, 1))
	}

	for _, ep := range []config.Endpoint{config.EndpointEnhance, config.EndpointManualEntry, config.EndpointExport, config.EndpointChat} {
		c.breakers[ep] = NewBreaker(ep, cfg.Service.CircuitBreaker, logger)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root all endpoints are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stats reports circuit breaker state per endpoint group
func (c *Client) Stats() map[string]any {
	stats := make(map[string]any, len(c.breakers))
	for ep, b := range c.breakers {
		stats[string(ep)] = b.Stats()
	}
	return stats
}

// Healthy reports whether every circuit breaker is closed
func (c *Client) Healthy() bool {
	for _, b := range c.breakers {
		if !b.IsHealthy() {
			return false
		}
	}
	return true
}

type requestFactory func(ctx context.Context) (*http.Request, error)

// do sends one request built by newReq and returns its buffered response.
// Any status >= 400 is turned into a SERVICE_ERROR carrying the service's message.
func (c *Client) do(ctx context.Context, ep config.Endpoint, name string, newReq requestFactory) (*Response, error) {
	var resp *Response
	err := c.metrics.TrackServiceCall(ctx, name, func(ctx context.Context) (int, error) {
		r, err := c.roundTrip(ctx, ep, newReq)
		if err != nil {
			return 0, err
		}
		resp = r
		return r.Status, checkStatus(name, r)
	})

	if err != nil {
		c.logger.LogError(err, "Service request failed", "endpoint", name)
		return resp, err
	}
	c.logger.Debug("Service request completed", "endpoint", name, "status", resp.Status, "bytes", len(resp.Body))
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, ep config.Endpoint, newReq requestFactory) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.RecordRateLimitHit(ctx, "client")
			return nil, transportError(err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.GetEndpointTimeout(ep))
	defer cancel()

	resp, err := c.breakers[ep].Execute(func() (*Response, error) {
		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Request-ID", uuid.NewString())
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		httpResp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBody+1))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) > c.maxBody {
			return nil, errBodyTooLarge
		}

		r := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}
		if r.Status >= http.StatusInternalServerError {
			return r, &statusError{status: r.Status}
		}
		return r, nil
	})

	var se *statusError
	switch {
	case err == nil:
		return resp, nil
	case stderrors.As(err, &se) && resp != nil:
		return resp, nil
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, errors.NewNetworkError(errors.ErrCodeServiceUnavailable, "Service temporarily unavailable", err).
			WithContext("endpoint", string(ep))
	case stderrors.Is(err, errBodyTooLarge):
		return nil, errors.NewServiceError(errors.ErrCodeMalformedResponse, "Response too large", err).
			WithContext("limit", c.maxBody)
	default:
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, transportError(err)
	}
}

// transportError classifies a failure to obtain any response
func transportError(err error) error {
	var netErr net.Error
	switch {
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.As(err, &netErr) && netErr.Timeout():
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "Request to backend timed out", err)
	case stderrors.Is(err, context.Canceled):
		return errors.NewNetworkError(errors.ErrCodeRequestCanceled, "Request canceled", err)
	default:
		return errors.NewNetworkError(errors.ErrCodeServiceUnavailable, "Failed to contact backend", err)
	}
}

// checkStatus maps an unsuccessful status onto a SERVICE_ERROR.
// The message is the service's {"error": ...} text, or "unknown".
func checkStatus(name string, r *Response) error {
	if r.Status < http.StatusBadRequest {
		return nil
	}

	message := "unknown"
	var body types.ServiceErrorResponse
	if err := json.Unmarshal(r.Body, &body); err == nil && body.Error != "" {
		message = body.Error
	}

	return errors.NewServiceError(errors.ErrCodeServiceError, message, nil).
		WithContext("endpoint", name).
		WithContext("status", r.Status)
}

// decodeJSON unmarshals a success body, rejecting anything that is not a JSON document
func decodeJSON(name string, r *Response, out any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json")) {
			return malformed(name, fmt.Errorf("unexpected content type %q", ct))
		}
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return malformed(name, err)
	}
	return nil
}

func malformed(name string, cause error) *errors.AppError {
	return errors.NewServiceError(errors.ErrCodeMalformedResponse,
		fmt.Sprintf("Malformed response from %s", name), cause).
		WithContext("endpoint", name)
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}
