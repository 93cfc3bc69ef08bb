package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations such as audio uploads.
	ExtendedHTTPTimeout = 45 * time.Second

	// ShortHTTPTimeout is used for quick operations like token exchange.
	ShortHTTPTimeout = 10 * time.Second

	// WebSocketHandshakeTimeout bounds the streaming recognition handshake.
	WebSocketHandshakeTimeout = 15 * time.Second

	// WebSocketCloseGrace is how long a closing session waits for the server's close frame.
	WebSocketCloseGrace = 2 * time.Second
)

// Retry and concurrency limits.
const (
	// LowRetryMax is used for operations that should retry fewer times.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3

	// SmallBufferSize is used for smaller buffers.
	SmallBufferSize = 10
)

// Cache defaults.
const (
	// DefaultCacheSize is the default number of entries kept by the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default lifetime of a cached response.
	DefaultCacheTTL = 5 * time.Minute

	// CacheOperationTimeout bounds a single remote cache round trip.
	CacheOperationTimeout = 2 * time.Second

	// DefaultNATSBucket is the JetStream KV bucket used for cached responses.
	DefaultNATSBucket = "watson-cache"

	// DefaultRedisKeyPrefix namespaces cached responses in Redis.
	DefaultRedisKeyPrefix = "watson:cache:"
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the number of failures before the circuit opens.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout = 60 * time.Second

	// CircuitBreakerSuccessThreshold is the number of half-open successes needed to close.
	CircuitBreakerSuccessThreshold = 2
)

// Token handling.
const (
	// TokenRefreshFraction is the share of a token's lifetime after which it is refreshed.
	TokenRefreshFraction = 0.8

	// TokenExpirationBuffer is the buffer applied to tokens without a lifetime.
	TokenExpirationBuffer = 30 * time.Second
)

// State and status constants.
const (
	// StatusClosed indicates a closed circuit.
	StatusClosed = "closed"

	// StatusOpen indicates an open circuit.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open circuit.
	StatusHalfOpen = "half-open"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Authentication constants.
const (
	// DefaultIAMURL is the IAM token endpoint used when none is configured.
	DefaultIAMURL = "https://iam.ng.bluemix.net/identity/token"

	// IAMBasicCredentials is the fixed client authorization sent to the IAM endpoint.
	IAMBasicCredentials = "Basic Yng6Yng="

	// IAMGrantTypeAPIKey is the grant type for API key exchange.
	IAMGrantTypeAPIKey = "urn:ibm:params:oauth:grant-type:apikey"

	// IAMGrantTypeRefresh is the grant type for token refresh.
	IAMGrantTypeRefresh = "refresh_token"

	// IAMResponseType is the requested response type.
	IAMResponseType = "cloud_iam"

	// APIKeyUsername marks a username/password pair that is really an IAM API key.
	APIKeyUsername = "apikey"

	// ICPAPIKeyPrefix marks API keys for private deployments, which stay on basic auth.
	ICPAPIKeyPrefix = "icp-"
)

// Header names and media types.
const (
	// HeaderAuthorization is the authorization header.
	HeaderAuthorization = "Authorization"

	// HeaderAccept is the accept header.
	HeaderAccept = "Accept"

	// HeaderContentType is the content type header.
	HeaderContentType = "Content-Type"

	// HeaderUserAgent is the user agent header.
	HeaderUserAgent = "User-Agent"

	// HeaderSDKAnalytics carries service, version and operation identifiers.
	HeaderSDKAnalytics = "X-IBMCloud-SDK-Analytics"

	// HeaderRequestID carries a client-generated request id.
	HeaderRequestID = "X-Request-Id"

	// HeaderETag is the entity tag response header.
	HeaderETag = "ETag"

	// HeaderIfNoneMatch is the conditional request header.
	HeaderIfNoneMatch = "If-None-Match"

	// MediaTypeJSON is the JSON media type.
	MediaTypeJSON = "application/json"

	// MediaTypeTextPlain is the plain text media type.
	MediaTypeTextPlain = "text/plain"

	// MediaTypeOctetStream is the fallback media type for binary parts.
	MediaTypeOctetStream = "application/octet-stream"

	// MediaTypeFormURLEncoded is the form media type.
	MediaTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// SDK identity.
const (
	// SDKName is reported in the default User-Agent.
	SDKName = "watson-go"

	// SDKVersion is reported in the default User-Agent.
	SDKVersion = "1.0.0"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = SDKName + "/" + SDKVersion
)

// Query parameter names shared by several services.
const (
	// QueryVersion is the API version token parameter.
	QueryVersion = "version"
)

// Streaming recognition.
const (
	// AudioChunkSize is the size of each binary audio frame.
	AudioChunkSize = 4 * 1024

	// InactivityTimeoutPrefix starts the error text the service sends on inactivity.
	InactivityTimeoutPrefix = "No speech detected for"

	// WebSocketRecognizePath is the streaming recognition path.
	WebSocketRecognizePath = "/v1/recognize"
)

// Recognition job polling.
const (
	// DefaultPollInterval is the wait between job status checks.
	DefaultPollInterval = 2 * time.Second

	// DefaultJobPollTimeout bounds how long a job is polled.
	DefaultJobPollTimeout = 10 * time.Minute
)

// Upload limits.
const (
	// MaxAudioUploadBytes is the largest audio payload accepted for synchronous recognition.
	MaxAudioUploadBytes = 100 * 1024 * 1024
)
