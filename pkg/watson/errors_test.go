package watson_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

var errConnectionRefused = errors.New("connection refused")

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   error
	}{
		{status: http.StatusBadRequest, kind: watson.ErrInvalidArgument},
		{status: http.StatusUnauthorized, kind: watson.ErrUnauthorized},
		{status: http.StatusForbidden, kind: watson.ErrForbidden},
		{status: http.StatusNotAcceptable, kind: watson.ErrForbidden},
		{status: http.StatusNotFound, kind: watson.ErrNotFound},
		{status: http.StatusConflict, kind: watson.ErrConflict},
		{status: http.StatusRequestEntityTooLarge, kind: watson.ErrRequestTooLarge},
		{status: http.StatusUnsupportedMediaType, kind: watson.ErrUnsupportedMediaType},
		{status: http.StatusTooManyRequests, kind: watson.ErrTooManyRequests},
		{status: http.StatusInternalServerError, kind: watson.ErrServiceError},
		{status: http.StatusServiceUnavailable, kind: watson.ErrServiceError},
		{status: http.StatusTeapot, kind: watson.ErrServiceError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			err := watson.NewServiceResponseError(tt.status, nil, nil)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.status, watson.StatusCode(err))
			assert.False(t, watson.IsTransport(err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "error key", status: 400, body: `{"error":"bad version","code":400}`, expected: "bad version"},
		{name: "error_message key", status: 400, body: `{"error_message":"missing text"}`, expected: "missing text"},
		{name: "message key", status: 404, body: `{"message":"model not found"}`, expected: "model not found"},
		{name: "errorMessage key", status: 500, body: `{"errorMessage":"internal"}`, expected: "internal"},
		{name: "errors array", status: 400, body: `{"errors":[{"message":"first"},{"message":"second"}]}`, expected: "first"},
		{name: "description key", status: 400, body: `{"description":"described"}`, expected: "described"},
		{name: "structured error is skipped", status: 400, body: `{"error":{"code":1},"message":"flat"}`, expected: "flat"},
		{name: "plain text", status: 502, body: "Bad Gateway from proxy", expected: "Bad Gateway from proxy"},
		{name: "unauthorized fallback", status: 401, body: "", expected: "Unauthorized: Access is denied due to invalid credentials."},
		{name: "status text fallback", status: 503, body: "", expected: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, watson.ErrorMessage(tt.status, []byte(tt.body)))
		})
	}
}

func TestServiceResponseError(t *testing.T) {
	t.Parallel()

	headers := http.Header{"X-Global-Transaction-Id": []string{"tx-1"}}
	err := watson.NewServiceResponseError(http.StatusNotFound, headers, []byte(`{"error":"collection not found"}`))

	assert.Equal(t, "collection not found (status 404)", err.Error())
	assert.Equal(t, "tx-1", err.Headers.Get("X-Global-Transaction-Id"))
	assert.True(t, watson.IsNotFound(err))
	assert.False(t, watson.IsUnauthorized(err))

	wrapped := fmt.Errorf("getting collection: %w", err)
	assert.True(t, watson.IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, watson.StatusCode(wrapped))

	decodeErr := &watson.ServiceResponseError{StatusCode: 200, Message: "failed to decode response", Err: errConnectionRefused}
	assert.True(t, watson.IsServiceError(decodeErr))
	require.ErrorIs(t, decodeErr, errConnectionRefused)
	assert.Contains(t, decodeErr.Error(), "connection refused")
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	err := &watson.TransportError{Method: "GET", URL: "https://example.com/v1/models", Err: errConnectionRefused}

	assert.True(t, watson.IsTransport(err))
	assert.False(t, watson.IsServiceError(err))
	require.ErrorIs(t, err, errConnectionRefused)
	assert.Equal(t, 0, watson.StatusCode(err))
	assert.Equal(t, "GET https://example.com/v1/models: connection refused", err.Error())
}

func TestInvalidArgument(t *testing.T) {
	t.Parallel()

	err := watson.RequiredArgument("environment_id")
	assert.True(t, watson.IsInvalidArgument(err))
	assert.Equal(t, "invalid argument: environment_id cannot be empty", err.Error())

	assert.True(t, watson.IsInvalidArgument(watson.ErrNilOptions))
	assert.True(t, watson.IsInvalidArgument(watson.ErrBadCharacters))
	assert.True(t, watson.IsInvalidArgument(watson.ErrVersionRequired))
}
