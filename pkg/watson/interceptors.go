package watson

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// InterceptedRequest is the view of an outgoing request given to interceptors.
// Headers may be modified; changes are applied before the request is sent.
type InterceptedRequest struct {
	Method    string
	URL       string
	Operation string
	Headers   http.Header
	Metadata  map[string]interface{}
}

// InterceptedResponse is the view of a completed exchange given to interceptors.
type InterceptedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *InterceptedRequest) error

// ResponseInterceptor is called after a response is received or the exchange failed.
type ResponseInterceptor func(ctx context.Context, req *InterceptedRequest, resp *InterceptedResponse) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	mu                   sync.RWMutex
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) *InterceptorChain {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestInterceptors = append(c.requestInterceptors, interceptor)

	return c
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) *InterceptorChain {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.responseInterceptors = append(c.responseInterceptors, interceptor)

	return c
}

// ExecuteRequestInterceptors runs all request interceptors in order.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *InterceptedRequest) error {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	interceptors := append([]RequestInterceptor(nil), c.requestInterceptors...)
	c.mu.RUnlock()

	for _, interceptor := range interceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors in order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *InterceptedRequest, resp *InterceptedResponse) error {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	interceptors := append([]ResponseInterceptor(nil), c.responseInterceptors...)
	c.mu.RUnlock()

	for _, interceptor := range interceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(_ context.Context, req *InterceptedRequest) error {
		logger.Debug("API Request", map[string]interface{}{
			"method":    req.Method,
			"url":       req.URL,
			"operation": req.Operation,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(_ context.Context, req *InterceptedRequest, resp *InterceptedResponse) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"url":         req.URL,
			"operation":   req.Operation,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *InterceptedRequest) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// RequestIDInterceptor tags every request with a fresh X-Request-Id unless
// one is already present.
func RequestIDInterceptor() RequestInterceptor {
	return func(_ context.Context, req *InterceptedRequest) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if req.Headers.Get(constants.HeaderRequestID) == "" {
			req.Headers.Set(constants.HeaderRequestID, uuid.NewString())
		}

		return nil
	}
}

// RateLimitInterceptor implements client-side rate limiting. Requests wait
// for a token or fail when the context ends first.
func RateLimitInterceptor(requestsPerSecond float64, burst int) RequestInterceptor {
	if burst < 1 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(ctx context.Context, _ *InterceptedRequest) error {
		err := limiter.Wait(ctx)
		if err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		return nil
	}
}

// AuthenticationInterceptor sets a Bearer token obtained from tokenProvider.
func AuthenticationInterceptor(tokenProvider func(context.Context) (string, error)) RequestInterceptor {
	return func(ctx context.Context, req *InterceptedRequest) error {
		token, err := tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("failed to get authentication token: %w", err)
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set(constants.HeaderAuthorization, "Bearer "+token)

		return nil
	}
}

// MetricsCollector records request counts and latencies in Prometheus
// collectors, labelled by operation and status code.
type MetricsCollector struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsCollector creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetricsCollector(reg prometheus.Registerer) (*MetricsCollector, error) {
	collector := &MetricsCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watson",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Service requests by operation and status code.",
		}, []string{"operation", "code"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watson",
			Subsystem: "client",
			Name:      "errors_total",
			Help:      "Failed service requests by operation.",
		}, []string{"operation"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "watson",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Service request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{collector.requests, collector.errors, collector.latency} {
			err := reg.Register(c)
			if err != nil {
				return nil, fmt.Errorf("registering metrics: %w", err)
			}
		}
	}

	return collector, nil
}

// Requests returns the request counter.
func (m *MetricsCollector) Requests() *prometheus.CounterVec {
	return m.requests
}

// Errors returns the error counter.
func (m *MetricsCollector) Errors() *prometheus.CounterVec {
	return m.errors
}

// Latency returns the latency histogram.
func (m *MetricsCollector) Latency() *prometheus.HistogramVec {
	return m.latency
}

const metricsStartKey = "metrics_start"

// MetricsRequestInterceptor records the request start time.
func MetricsRequestInterceptor(_ *MetricsCollector) RequestInterceptor {
	return func(_ context.Context, req *InterceptedRequest) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metricsStartKey] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records the outcome of a request.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(_ context.Context, req *InterceptedRequest, resp *InterceptedResponse) error {
		operation := req.Operation
		if operation == "" {
			operation = req.Method
		}

		code := "error"
		if resp.StatusCode > 0 {
			code = strconv.Itoa(resp.StatusCode)
		}

		collector.requests.WithLabelValues(operation, code).Inc()

		if resp.Error != nil || resp.StatusCode >= http.StatusBadRequest {
			collector.errors.WithLabelValues(operation).Inc()
		}

		if start, ok := req.Metadata[metricsStartKey].(time.Time); ok {
			collector.latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}

		return nil
	}
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Threshold        int           // Number of failures before opening
	Timeout          time.Duration // Time before trying again
	SuccessThreshold int           // Number of successes to close
}

// CircuitBreaker stops sending requests to a failing service.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  constants.StatusClosed,
	}
}

// State returns the current state: closed, open or half-open.
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

func (b *CircuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != constants.StatusOpen {
		return nil
	}

	if time.Since(b.lastFailure) <= b.config.Timeout {
		return ErrCircuitBreakerOpen
	}

	b.state = constants.StatusHalfOpen
	b.successes = 0

	return nil
}

func (b *CircuitBreaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if failed {
		b.failures++
		b.lastFailure = time.Now()

		if b.failures >= b.config.Threshold || b.state == constants.StatusHalfOpen {
			b.state = constants.StatusOpen
		}

		return
	}

	switch b.state {
	case constants.StatusHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = constants.StatusClosed
			b.failures = 0
		}
	case constants.StatusClosed:
		b.failures = 0
	}
}

// CircuitBreakerRequestInterceptor rejects requests while the circuit is open.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(_ context.Context, _ *InterceptedRequest) error {
		return breaker.allow()
	}
}

// CircuitBreakerResponseInterceptor updates circuit state from responses.
// Transport failures and 5xx responses count as failures.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(_ context.Context, _ *InterceptedRequest, resp *InterceptedResponse) error {
		failed := resp.StatusCode >= http.StatusInternalServerError ||
			(resp.Error != nil && resp.StatusCode == 0)
		breaker.record(failed)

		return nil
	}
}
