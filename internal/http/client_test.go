package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/internal/auth"
	watsonhttp "github.com/fivetwenty-io/watson-go/internal/http"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// MockTokenManager for testing.
type MockTokenManager struct {
	token string
	err   error
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func bearer(token string) auth.Authenticator {
	return auth.NewTokenAuthenticator(&MockTokenManager{token: token}, "")
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/environments", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.True(t, strings.HasPrefix(request.Header.Get("User-Agent"), "watson-go/"))

			response := map[string]string{"environment_id": "env-1", "name": "byod"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, bearer("test-token"))

		req := &watsonhttp.Request{
			Method: "GET",
			Path:   "/v1/environments",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "env-1", result["environment_id"])
		assert.Equal(t, "byod", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/models", request.URL.Path)
			assert.Equal(t, "version=2018-03-16", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil)

		req := &watsonhttp.Request{
			Method: "GET",
			Path:   "/v1/models",
			Query:  url.Values{"version": []string{"2018-03-16"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "my-env", body["name"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil)

		req := &watsonhttp.Request{
			Method: "POST",
			Path:   "/v1/environments",
			Body:   map[string]string{"name": "my-env"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("raw body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "text/plain", request.Header.Get("Content-Type"))

			body, _ := io.ReadAll(request.Body)
			assert.Equal(t, "Hola", string(body))

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil)

		resp, err := client.PostRaw(context.Background(), "/v2/identify", []byte("Hola"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"code": 404, "error": "Model not found"})
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil)

		req := &watsonhttp.Request{
			Method: "GET",
			Path:   "/v2/models/invalid",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.True(t, watson.IsNotFound(err))

		respErr := &watson.ServiceResponseError{}
		ok := errors.As(err, &respErr)
		require.True(t, ok)
		assert.Equal(t, "Model not found", respErr.Message)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "per-call", request.Header.Get("X-Call"))
			assert.Equal(t, "watson-go/1.0.0 my-app/2.0", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil, watsonhttp.WithDefaultHeaders(map[string]string{
			"User-Agent": "my-app/2.0",
		}))

		req := &watsonhttp.Request{
			Method: "GET",
			Path:   "/v1/environments",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
			ExtraHeaders: http.Header{"X-Call": []string{"per-call"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("per-request endpoint and credentials", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			user, pass, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "user", user)
			assert.Equal(t, "pass", pass)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := watsonhttp.NewClient("http://127.0.0.1:1", bearer("unused"))

		resp, err := client.Do(context.Background(), &watsonhttp.Request{
			Method:        "GET",
			Path:          "/v1/models",
			BaseURL:       server.URL + "/",
			Authenticator: &auth.BasicAuthenticator{Username: "user", Password: "pass"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client := watsonhttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/v1/models", nil)
		require.Error(t, err)
		assert.True(t, watson.IsTransport(err))
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := watsonhttp.NewClient(server.URL, nil, watsonhttp.WithLogger(logger), watsonhttp.WithDebug(true))

		req := &watsonhttp.Request{
			Method: "GET",
			Path:   "/v1/models",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

func TestClient_Multipart(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mediaType, params, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
		assert.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(request.Body, params["boundary"])

		part, err := reader.NextPart()
		assert.NoError(t, err)
		assert.Equal(t, "file", part.FormName())
		assert.Equal(t, "doc.html", part.FileName())
		assert.Equal(t, "text/html", part.Header.Get("Content-Type"))

		data, _ := io.ReadAll(part)
		assert.Equal(t, "<p>hi</p>", string(data))

		part, err = reader.NextPart()
		assert.NoError(t, err)
		assert.Equal(t, "metadata", part.FormName())
		assert.Equal(t, "application/json", part.Header.Get("Content-Type"))

		_, err = reader.NextPart()
		assert.ErrorIs(t, err, io.EOF)

		writer.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := watsonhttp.NewClient(server.URL, nil)

	resp, err := client.Do(context.Background(), &watsonhttp.Request{
		Method: "POST",
		Path:   "/v1/environments/e/collections/c/documents",
		Parts: []watsonhttp.Part{
			watsonhttp.FilePart("file", watson.FileFromBytes([]byte("<p>hi</p>"), "doc.html", "")),
			watsonhttp.JSONPart("metadata", []byte(`{"source":"test"}`)),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*watsonhttp.Client, context.Context) (*watsonhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *watsonhttp.Client, ctx context.Context) (*watsonhttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *watsonhttp.Client, ctx context.Context) (*watsonhttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *watsonhttp.Client, ctx context.Context) (*watsonhttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *watsonhttp.Client, ctx context.Context) (*watsonhttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *watsonhttp.Client, ctx context.Context) (*watsonhttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := watsonhttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil, watsonhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil, watsonhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil, watsonhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.True(t, watson.IsInvalidArgument(err))
		assert.Equal(t, int32(1), attempts.Load()) // Should not retry
	})

	t.Run("no retries by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.True(t, watson.IsServiceError(err))
		assert.Equal(t, int32(1), attempts.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Cache(t *testing.T) {
	t.Parallel()

	t.Run("serves repeated GETs from cache", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			hits.Add(1)
			_, _ = writer.Write([]byte(`{"models":[]}`))
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil,
			watsonhttp.WithCache(watson.NewMemoryCache(10), time.Minute, nil))

		for range 3 {
			resp, err := client.Get(context.Background(), "/v1/models", nil)
			require.NoError(t, err)
			assert.JSONEq(t, `{"models":[]}`, string(resp.Body))
		}

		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, int64(2), client.CacheStats().Hits)
	})

	t.Run("revalidates with etag", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			hits.Add(1)

			if request.Header.Get("If-None-Match") == `"v1"` {
				writer.WriteHeader(http.StatusNotModified)

				return
			}

			writer.Header().Set("ETag", `"v1"`)
			_, _ = writer.Write([]byte(`{"name":"graph"}`))
		}))
		defer server.Close()

		policy := watson.DefaultCachingPolicy()
		policy.Revalidate = true

		client := watsonhttp.NewClient(server.URL, nil,
			watsonhttp.WithCache(watson.NewMemoryCache(10), time.Minute, policy))

		first, err := client.Get(context.Background(), "/v2/graphs", nil)
		require.NoError(t, err)
		assert.False(t, first.FromCache)

		second, err := client.Get(context.Background(), "/v2/graphs", nil)
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		assert.Equal(t, 200, second.StatusCode)
		assert.JSONEq(t, `{"name":"graph"}`, string(second.Body))
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("does not cache POST", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			hits.Add(1)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := watsonhttp.NewClient(server.URL, nil,
			watsonhttp.WithCache(watson.NewMemoryCache(10), time.Minute, nil))

		for range 2 {
			_, err := client.Post(context.Background(), "/v1/analyze", map[string]string{"text": "x"})
			require.NoError(t, err)
		}

		assert.Equal(t, int32(2), hits.Load())
	})
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.NotEmpty(t, request.Header.Get("X-Request-Id"))
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := watson.NewCircuitBreaker(&watson.CircuitBreakerConfig{Threshold: 1, Timeout: time.Hour, SuccessThreshold: 1})

	chain := watson.NewInterceptorChain().
		AddRequestInterceptor(watson.RequestIDInterceptor()).
		AddRequestInterceptor(watson.CircuitBreakerRequestInterceptor(breaker)).
		AddResponseInterceptor(watson.CircuitBreakerResponseInterceptor(breaker))

	client := watsonhttp.NewClient(server.URL, nil, watsonhttp.WithInterceptors(chain))

	_, err := client.Get(context.Background(), "/v1/models", nil)
	require.Error(t, err)
	assert.True(t, watson.IsServiceError(err))
	assert.Equal(t, "open", breaker.State())

	_, err = client.Get(context.Background(), "/v1/models", nil)
	require.ErrorIs(t, err, watson.ErrCircuitBreakerOpen)
	assert.True(t, watson.IsTransport(err))
}
