package watson

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error kinds. Every error returned by a service call matches exactly one of
// these through errors.Is.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrRequestTooLarge      = errors.New("request too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrTooManyRequests      = errors.New("too many requests")
	ErrServiceError         = errors.New("service error")
	ErrTransport            = errors.New("transport error")
)

// Static errors for err113 compliance.
var (
	ErrNilOptions          = fmt.Errorf("%w: options cannot be nil", ErrInvalidArgument)
	ErrCircuitBreakerOpen  = errors.New("circuit breaker is open")
	ErrCacheMiss           = errors.New("key not found")
	ErrCacheEntryExpired   = errors.New("entry expired")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrNoCredentialsFound  = errors.New("no credentials found")
	ErrBadCharacters       = fmt.Errorf("%w: value cannot start or end with curly brackets or quotes", ErrInvalidArgument)
	ErrVersionRequired     = fmt.Errorf("%w: version cannot be empty", ErrInvalidArgument)
	ErrEndpointRequired    = fmt.Errorf("%w: endpoint cannot be empty", ErrInvalidArgument)
	ErrFileSourceAmbiguous = fmt.Errorf("%w: a reader source needs a filename or a content type", ErrInvalidArgument)
)

const unauthorizedMessage = "Unauthorized: Access is denied due to invalid credentials."

// InvalidArgument returns an error wrapping ErrInvalidArgument with a field name and reason.
func InvalidArgument(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidArgument, field, reason)
}

// RequiredArgument reports a missing required field.
func RequiredArgument(field string) error {
	return InvalidArgument(field, "cannot be empty")
}

// ServiceResponseError is returned when the service answers with a non-2xx
// status or with a body that cannot be decoded.
type ServiceResponseError struct {
	StatusCode int
	Message    string
	Body       []byte
	Headers    http.Header
	Err        error
}

// Error implements the error interface.
func (e *ServiceResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap exposes a decode failure, if any.
func (e *ServiceResponseError) Unwrap() error {
	return e.Err
}

// Is classifies the error by status code.
func (e *ServiceResponseError) Is(target error) bool {
	return KindForStatus(e.StatusCode) == target
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrInvalidArgument
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden, http.StatusNotAcceptable:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusRequestEntityTooLarge:
		return ErrRequestTooLarge
	case http.StatusUnsupportedMediaType:
		return ErrUnsupportedMediaType
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		return ErrServiceError
	}
}

// NewServiceResponseError builds an error from a failed response, pulling the
// message out of the usual JSON error shapes.
func NewServiceResponseError(status int, headers http.Header, body []byte) *ServiceResponseError {
	return &ServiceResponseError{
		StatusCode: status,
		Message:    ErrorMessage(status, body),
		Body:       body,
		Headers:    headers,
	}
}

// ErrorMessage extracts a human readable message from an error body.
func ErrorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error", "error_message", "message", "errorMessage", "errors.0.message", "description"} {
			result := gjson.GetBytes(body, path)
			if result.Exists() && result.Type == gjson.String && result.String() != "" {
				return result.String()
			}
		}
	}

	if status == http.StatusUnauthorized {
		return unauthorizedMessage
	}

	if len(body) > 0 {
		return string(body)
	}

	return http.StatusText(status)
}

// TransportError wraps a failure that happened before a response was read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsInvalidArgument checks if the error is a local validation or 400 error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsServiceError checks if the error is a server side failure.
func IsServiceError(err error) bool {
	return errors.Is(err, ErrServiceError)
}

// IsTransport checks if the error happened at the network level.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	respErr := &ServiceResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}

	return 0
}
