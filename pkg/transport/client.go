// Package transport delivers message envelopes to the portal HTTP API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/casimir-one/casimir-go/pkg/messages"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      2 * time.Second,
	BackoffMultiple: 2.0,
}

// ITransport sends envelopes to the portal and returns its response.
type ITransport interface {
	Get(ctx context.Context, path string) (*Response, error)

	// Post and Put are attempted once; a state-changing request is never retried.
	Post(ctx context.Context, path string, msg messages.IMessage) (*Response, error)
	Put(ctx context.Context, path string, msg messages.IMessage) (*Response, error)
}

// Response is a successful portal response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v. Portal responses wrapped in
// {"data": ...} are unwrapped first.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("response body is empty")
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body, &wrapped); err == nil && len(wrapped.Data) > 0 {
		return json.Unmarshal(wrapped.Data, v)
	}
	return json.Unmarshal(r.Body, v)
}

// NetworkError is returned when the request could not be completed.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is returned when the portal answers with a non-2xx status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// ClientConfig holds the configuration for HttpService
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	// RateLimit is the number of requests per second; 0 disables the limiter.
	RateLimit float64
	Retry     RetryConfig
	Logger    *zap.Logger
}

// HttpService is the default ITransport.
type HttpService struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retryConfig RetryConfig
	logger      *zap.Logger
}

var _ ITransport = (*HttpService)(nil)

// NewHttpService creates a new portal transport with dependency injection
func NewHttpService(cfg *ClientConfig) (*HttpService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HttpService{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  httpClient,
		limiter:     limiter,
		retryConfig: retry,
		logger:      cfg.Logger,
	}, nil
}

// buildRequestURL constructs a full URL for a portal endpoint
func (s *HttpService) buildRequestURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

func (s *HttpService) Get(ctx context.Context, path string) (*Response, error) {
	var lastErr error
	backoff := s.retryConfig.InitialBackoff
	for attempt := 0; attempt < s.retryConfig.MaxAttempts; attempt++ {
		resp, err := s.do(ctx, http.MethodGet, path, nil)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == s.retryConfig.MaxAttempts-1 {
			break
		}
		s.logger.Sugar().Debugw("Retrying portal request",
			"path", path,
			"attempt", attempt+1,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, &NetworkError{Op: http.MethodGet, URL: s.buildRequestURL(path), Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * s.retryConfig.BackoffMultiple)
		if backoff > s.retryConfig.MaxBackoff {
			backoff = s.retryConfig.MaxBackoff
		}
	}
	return nil, lastErr
}

func (s *HttpService) Post(ctx context.Context, path string, msg messages.IMessage) (*Response, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	return s.do(ctx, http.MethodPost, path, msg)
}

func (s *HttpService) Put(ctx context.Context, path string, msg messages.IMessage) (*Response, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	return s.do(ctx, http.MethodPut, path, msg)
}

// retryable reports whether a GET failure may succeed on a later attempt.
func retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(netErr.Err, context.Canceled) && !errors.Is(netErr.Err, context.DeadlineExceeded)
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func (s *HttpService) do(ctx context.Context, method, path string, msg messages.IMessage) (*Response, error) {
	url := s.buildRequestURL(path)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: method, URL: url, Err: err}
		}
	}

	var body io.Reader
	if msg != nil {
		body = bytes.NewReader(msg.HttpBody())
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if msg != nil {
		req.Header.Set("Content-Type", msg.ContentType())
		for k, v := range msg.HttpHeaders() {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Accept", messages.ContentTypeJSON)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Sugar().Warnw("Portal returned error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	s.logger.Sugar().Debugw("Portal request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
	)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
