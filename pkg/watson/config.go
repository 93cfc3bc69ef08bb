package watson

import (
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// TokenPersister keeps IAM access tokens between runs, so that short-lived
// processes such as the CLI do not fetch a new token on every start.
type TokenPersister interface {
	LoadServiceToken(service string) (token string, expiresAt time.Time)
	UpdateServiceToken(service, token string, expiresAt time.Time, refreshToken string) error
}

// Config represents the configuration shared by every service client.
//
// # Authentication precedence
//
// The service clients resolve credentials in this order:
//  1. IAMAccessToken: used as-is as a Bearer token. The caller is responsible
//     for refreshing it.
//  2. IAMAPIKey: exchanged for a Bearer token at IAMURL; the token is
//     refreshed once 80% of its lifetime has passed.
//  3. Username/Password: HTTP Basic credentials. A Username of "apikey" with a
//     Password that does not start with "icp-" is treated as an IAMAPIKey.
//  4. SkipAuthentication: requests are sent without credentials.
//
// When none of the above is set and DisableCredentialLookup is false, the
// constructor consults LoadCredentials for the service (credential file,
// VCAP_SERVICES, environment variables).
//
// # Endpoint
//
// APIEndpoint defaults to the public endpoint of each service. A trailing
// slash is trimmed. Values starting or ending with a curly bracket or a quote
// are rejected, since they are almost always a pasted JSON fragment.
//
// # Timeouts and retries
//
// Per-request deadlines should be set on the context passed to Execute.
// HTTPTimeout bounds each HTTP exchange. The client does not retry by default;
// setting RetryMax enables retries of 5xx, 429 and transport failures, never of
// other 4xx responses.
type Config struct {
	// APIEndpoint: base URL of the service (e.g.,
	// "https://gateway.watsonplatform.net/discovery/api").
	APIEndpoint string

	// Version: API version date (e.g., "2018-05-23") sent as the "version"
	// query parameter. Required by versioned services.
	Version string

	// Username: HTTP Basic username.
	Username string
	// Password: HTTP Basic password.
	Password string
	// IAMAPIKey: API key exchanged for IAM access tokens.
	IAMAPIKey string
	// IAMURL: IAM token endpoint. Defaults to the public IAM endpoint.
	IAMURL string
	// IAMAccessToken: user-managed access token sent as-is.
	IAMAccessToken string
	// SkipAuthentication: send requests without any credentials.
	SkipAuthentication bool
	// TokenPersister: optional store for tokens obtained with IAMAPIKey.
	TokenPersister TokenPersister
	// DisableCredentialLookup: do not consult credential files or the
	// environment when no credentials are configured.
	DisableCredentialLookup bool

	// DefaultHeaders: headers added to every request.
	DefaultHeaders map[string]string
	// UserAgent: overrides the default User-Agent.
	UserAgent string

	// HTTPTimeout: timeout for each HTTP exchange. Defaults to 30s.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries. 0 disables retrying.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug: enables request/response logging through Logger.
	Debug bool
	// Logger: structured logger used by the transport.
	Logger Logger

	// Interceptors: optional request/response hooks run around every call.
	Interceptors *InterceptorChain

	// Cache: optional cache for idempotent GET responses.
	Cache Cache
	// CacheTTL: lifetime of cached responses. Defaults to 5m.
	CacheTTL time.Duration
}

// Clone returns a shallow copy of the config with its header map copied.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	clone := *c

	if c.DefaultHeaders != nil {
		clone.DefaultHeaders = make(map[string]string, len(c.DefaultHeaders))
		for k, v := range c.DefaultHeaders {
			clone.DefaultHeaders[k] = v
		}
	}

	return &clone
}

// HasCredentials reports whether any authentication material is configured.
func (c *Config) HasCredentials() bool {
	return c.IAMAccessToken != "" || c.IAMAPIKey != "" || c.Username != "" || c.SkipAuthentication
}

// ApplyCredentials fills unset fields from resolved credentials.
func (c *Config) ApplyCredentials(creds *Credentials) {
	if creds == nil {
		return
	}

	if c.APIEndpoint == "" {
		c.APIEndpoint = creds.URL
	}

	if c.Username == "" && c.Password == "" {
		c.Username = creds.Username
		c.Password = creds.Password
	}

	if c.IAMAPIKey == "" {
		c.IAMAPIKey = creds.IAMAPIKey
	}

	if c.IAMURL == "" {
		c.IAMURL = creds.IAMURL
	}
}
