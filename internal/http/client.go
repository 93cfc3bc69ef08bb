package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/watson-go/internal/auth"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

const tracerName = "github.com/fivetwenty-io/watson-go"

// Client is the HTTP transport shared by the service clients.
type Client struct {
	baseURL        string
	authenticator  auth.Authenticator
	httpClient     *retryablehttp.Client
	logger         watson.Logger
	debug          bool
	userAgent      string
	defaultHeaders map[string]string
	interceptors   *watson.InterceptorChain
	cache          *watson.CacheManager
	cachePolicy    *watson.CachingPolicy
	tracer         trace.Tracer
}

// Request represents an HTTP request.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is encoded as JSON.
	Body interface{}
	// RawBody is sent as-is with ContentType.
	RawBody     io.Reader
	ContentType string
	// Parts are sent as multipart/form-data.
	Parts []Part

	// Headers are set on the request; a User-Agent entry is appended to the
	// client's user agent.
	Headers map[string]string
	// ExtraHeaders replace any header of the same name.
	ExtraHeaders http.Header
	Accept       string

	// Operation identifies the service operation in logs, metrics and traces.
	Operation string

	// BaseURL and Authenticator override the client defaults for this request.
	BaseURL       string
	Authenticator auth.Authenticator
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	FromCache  bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger watson.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables retries of 5xx, 429 and transport failures.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout bounds each HTTP exchange.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithUserAgent overrides the User-Agent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithDefaultHeaders sets headers added to every request. A User-Agent entry
// is appended to the SDK user agent instead of replacing it.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.defaultHeaders = make(map[string]string, len(headers))
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithInterceptors sets the interceptor chain.
func WithInterceptors(chain *watson.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithCache enables response caching for GET requests.
func WithCache(cache watson.Cache, ttl time.Duration, policy *watson.CachingPolicy) Option {
	return func(c *Client) {
		if cache == nil {
			return
		}

		options := watson.DefaultCacheOptions()
		if ttl > 0 {
			options.TTL = ttl
		}

		if policy == nil {
			policy = watson.DefaultCachingPolicy()
		}

		c.cache = watson.NewCacheManager(cache, options)
		c.cachePolicy = policy
	}
}

// WithTracerProvider sets the tracer provider. The global provider is used by default.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// NewClient creates a new HTTP client. Retrying is disabled until
// WithRetryConfig is given.
func NewClient(baseURL string, authenticator auth.Authenticator, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if authenticator == nil {
		authenticator = auth.NoAuthAuthenticator{}
	}

	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		authenticator: authenticator,
		httpClient:    retryClient,
		logger:        watson.NopLogger{},
		userAgent:     constants.DefaultUserAgent,
		tracer:        otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	if retryClient.RetryMax > 0 {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// checkRetry retries transport failures, 429 and 5xx except 501. Other
// client errors are never retried.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil //nolint:nilerr // the error is surfaced once retries are exhausted
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}

	if resp.StatusCode >= http.StatusInternalServerError && resp.StatusCode != http.StatusNotImplemented {
		return true, nil
	}

	return false, nil
}

// BaseURL returns the default base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UserAgent returns the User-Agent sent with requests.
func (c *Client) UserAgent() string {
	ua := c.userAgent

	for k, v := range c.defaultHeaders {
		if http.CanonicalHeaderKey(k) == constants.HeaderUserAgent && v != "" {
			ua += " " + v
		}
	}

	return ua
}

// CacheStats returns cache statistics, or nil when caching is disabled.
func (c *Client) CacheStats() *watson.CacheStats {
	if c.cache == nil {
		return nil
	}

	return c.cache.GetStats()
}

// Do executes an HTTP request. For non-2xx responses both the response and
// a *watson.ServiceResponseError are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	operation := req.Operation
	if operation == "" {
		operation = req.Method + " " + req.Path
	}

	ctx, span := c.tracer.Start(ctx, operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", fullURL),
		))
	defer span.End()

	resp, err := c.do(ctx, req, fullURL, operation)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return resp, err
}

//nolint:funlen,cyclop // Linear request pipeline
func (c *Client) do(ctx context.Context, req *Request, fullURL, operation string) (*Response, error) {
	intercepted := &watson.InterceptedRequest{
		Method:    req.Method,
		URL:       fullURL,
		Operation: operation,
		Headers:   c.buildHeaders(req),
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, &watson.TransportError{Method: req.Method, URL: fullURL, Err: err}
	}

	cacheKey, cached := c.cacheLookup(ctx, req, fullURL)
	if cached != nil {
		if !c.cachePolicy.Revalidate || cached.ETag == "" {
			return c.cachedResponse(ctx, intercepted, cached), nil
		}

		intercepted.Headers.Set(constants.HeaderIfNoneMatch, cached.ETag)
	}

	body, contentType, err := c.encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header = intercepted.Headers
	if contentType != "" {
		httpReq.Header.Set(constants.HeaderContentType, contentType)
	}

	authenticator := c.authenticator
	if req.Authenticator != nil {
		authenticator = req.Authenticator
	}

	err = authenticator.Authenticate(ctx, httpReq.Request)
	if err != nil {
		return nil, fmt.Errorf("authenticating %s: %w", operation, err)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":    req.Method,
			"url":       fullURL,
			"operation": operation,
			"auth":      authenticator.Scheme(),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		transportErr := &watson.TransportError{Method: req.Method, URL: fullURL, Err: err}
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &watson.InterceptedResponse{Error: transportErr})

		return nil, transportErr
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		transportErr := &watson.TransportError{Method: req.Method, URL: fullURL, Err: err}
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &watson.InterceptedResponse{
			StatusCode: httpResp.StatusCode,
			Error:      transportErr,
		})

		return nil, transportErr
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"url":      fullURL,
			"duration": time.Since(start).String(),
			"bytes":    len(respBody),
		})
	}

	var respErr error
	if resp.StatusCode >= http.StatusBadRequest {
		respErr = watson.NewServiceResponseError(resp.StatusCode, resp.Headers, resp.Body)
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &watson.InterceptedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Error:      respErr,
	})
	if err != nil && respErr == nil {
		return resp, &watson.TransportError{Method: req.Method, URL: fullURL, Err: err}
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		_ = c.cache.Refresh(ctx, cacheKey, cached)

		return &Response{StatusCode: http.StatusOK, Body: cached.Data, Headers: resp.Headers, FromCache: true}, nil
	}

	if respErr != nil {
		return resp, respErr
	}

	c.cacheStore(ctx, req, cacheKey, resp)

	return resp, nil
}

func (c *Client) buildURL(req *Request) (string, error) {
	base := c.baseURL
	if req.BaseURL != "" {
		base = strings.TrimSuffix(req.BaseURL, "/")
	}

	if base == "" {
		return "", watson.ErrEndpointRequired
	}

	fullURL := base + req.Path

	if len(req.Query) > 0 {
		parsed, err := url.Parse(fullURL)
		if err != nil {
			return "", fmt.Errorf("%w: parsing URL %s: %w", watson.ErrInvalidArgument, fullURL, err)
		}

		parsed.RawQuery = req.Query.Encode()
		fullURL = parsed.String()
	}

	return fullURL, nil
}

func (c *Client) buildHeaders(req *Request) http.Header {
	headers := make(http.Header)

	accept := req.Accept
	if accept == "" {
		accept = constants.MediaTypeJSON
	}

	headers.Set(constants.HeaderAccept, accept)

	for k, v := range c.defaultHeaders {
		if http.CanonicalHeaderKey(k) == constants.HeaderUserAgent {
			continue
		}

		headers.Set(k, v)
	}

	headers.Set(constants.HeaderUserAgent, c.UserAgent())

	for k, v := range req.Headers {
		if http.CanonicalHeaderKey(k) == constants.HeaderUserAgent {
			headers.Set(constants.HeaderUserAgent, c.UserAgent()+" "+v)

			continue
		}

		headers.Set(k, v)
	}

	for k, values := range req.ExtraHeaders {
		headers.Del(k)

		for _, v := range values {
			headers.Add(k, v)
		}
	}

	return headers
}

func (c *Client) encodeBody(req *Request) (interface{}, string, error) {
	switch {
	case len(req.Parts) > 0:
		return encodeMultipart(req.Parts)
	case req.RawBody != nil:
		contentType := req.ContentType
		if contentType == "" {
			contentType = constants.MediaTypeOctetStream
		}

		return req.RawBody, contentType, nil
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}

		return bytes.NewReader(data), constants.MediaTypeJSON, nil
	default:
		return nil, "", nil
	}
}

func (c *Client) cacheable(req *Request, fullURL string) bool {
	return c.cache != nil && req.Method == http.MethodGet && c.cachePolicy.ShouldCache(req.Method, fullURL, http.StatusOK)
}

func (c *Client) cacheLookup(ctx context.Context, req *Request, fullURL string) (string, *watson.CacheEntry) {
	if !c.cacheable(req, fullURL) {
		return "", nil
	}

	key := c.cache.GetCacheKey(req.Method, fullURL, nil)

	entry, err := c.cache.Lookup(ctx, key)
	if err != nil {
		return key, nil
	}

	return key, entry
}

func (c *Client) cachedResponse(ctx context.Context, intercepted *watson.InterceptedRequest, entry *watson.CacheEntry) *Response {
	if c.debug {
		c.logger.Debug("HTTP Cache Hit", map[string]interface{}{"url": intercepted.URL})
	}

	_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &watson.InterceptedResponse{
		StatusCode: http.StatusOK,
		Body:       entry.Data,
	})

	return &Response{StatusCode: http.StatusOK, Body: entry.Data, Headers: make(http.Header), FromCache: true}
}

func (c *Client) cacheStore(ctx context.Context, req *Request, key string, resp *Response) {
	if key == "" || !c.cachePolicy.ShouldCache(req.Method, key, resp.StatusCode) {
		return
	}

	err := c.cache.SetWithETag(ctx, key, resp.Body, resp.Headers.Get(constants.HeaderETag), 0)
	if err != nil {
		c.logger.Warn("failed to cache response", map[string]interface{}{"error": err.Error()})
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// PostRaw performs a POST request with a raw body.
func (c *Client) PostRaw(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, RawBody: bytes.NewReader(body), ContentType: contentType})
}
