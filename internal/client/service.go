package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/watson-go/internal/auth"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/internal/http"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Info describes a service.
type Info struct {
	// Name is used in the analytics header and logs (e.g., "discovery").
	Name string
	// APIVersion is the path version reported in the analytics header (e.g., "v1").
	APIVersion string
	// CredentialName is the prefix matched in VCAP_SERVICES and credential files.
	CredentialName string
	// DefaultURL is used when no endpoint is configured.
	DefaultURL string
	// RequiresVersion makes the version date mandatory.
	RequiresVersion bool
}

// Target is the endpoint, credentials and headers captured when a call is built.
type Target struct {
	Endpoint      string
	Version       string
	Authenticator auth.Authenticator
	Headers       map[string]string
}

// Service holds the state shared by every call of one service client. The
// setters may be used concurrently with calls; a call uses the state that was
// current when it was built.
type Service struct {
	info   Info
	http   *http.Client
	logger watson.Logger

	mu             sync.RWMutex
	endpoint       string
	version        string
	settings       auth.Settings
	authenticator  auth.Authenticator
	defaultHeaders map[string]string
}

// New creates the shared service state from a config.
func New(info Info, config *watson.Config) (*Service, error) {
	cfg := config.Clone()

	if !cfg.HasCredentials() && !cfg.DisableCredentialLookup && info.CredentialName != "" {
		creds, err := watson.LoadCredentials(info.CredentialName)
		if err != nil && !errors.Is(err, watson.ErrNoCredentialsFound) {
			return nil, fmt.Errorf("loading %s credentials: %w", info.Name, err)
		}

		cfg.ApplyCredentials(creds)
	}

	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = info.DefaultURL
	}

	endpoint, err := watson.NormalizeEndpoint(cfg.APIEndpoint)
	if err != nil {
		return nil, err
	}

	if info.RequiresVersion && cfg.Version == "" {
		return nil, fmt.Errorf("%s: %w", info.Name, watson.ErrVersionRequired)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = watson.NopLogger{}
	}

	settings := auth.Settings{
		Username:           cfg.Username,
		Password:           cfg.Password,
		IAMAPIKey:          cfg.IAMAPIKey,
		IAMURL:             cfg.IAMURL,
		IAMAccessToken:     cfg.IAMAccessToken,
		SkipAuthentication: cfg.SkipAuthentication,
		Persister:          cfg.TokenPersister,
		Service:            info.Name,
	}

	authenticator, err := auth.NewAuthenticator(settings, nil)
	if err != nil {
		return nil, err
	}

	service := &Service{
		info:           info,
		http:           http.NewClient(endpoint, authenticator, httpOptions(cfg, logger)...),
		logger:         logger,
		endpoint:       endpoint,
		version:        cfg.Version,
		settings:       settings,
		authenticator:  authenticator,
		defaultHeaders: copyHeaders(cfg.DefaultHeaders),
	}

	logger.Debug("service client created", map[string]interface{}{
		"service":  info.Name,
		"endpoint": endpoint,
		"auth":     authenticator.Scheme(),
	})

	return service, nil
}

func httpOptions(cfg *watson.Config, logger watson.Logger) []http.Option {
	opts := []http.Option{http.WithLogger(logger)}

	if cfg.Debug {
		opts = append(opts, http.WithDebug(true))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(cfg.UserAgent))
	}

	if cfg.HTTPTimeout > 0 {
		opts = append(opts, http.WithHTTPTimeout(cfg.HTTPTimeout))
	}

	if cfg.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if cfg.RetryWaitMin > 0 {
			retryWaitMin = cfg.RetryWaitMin
		}

		if cfg.RetryWaitMax > 0 {
			retryWaitMax = cfg.RetryWaitMax
		}

		opts = append(opts, http.WithRetryConfig(cfg.RetryMax, retryWaitMin, retryWaitMax))
	}

	if cfg.Interceptors != nil {
		opts = append(opts, http.WithInterceptors(cfg.Interceptors))
	}

	if cfg.Cache != nil {
		opts = append(opts, http.WithCache(cfg.Cache, cfg.CacheTTL, nil))
	}

	return opts
}

func copyHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}

	clone := make(map[string]string, len(headers))
	for k, v := range headers {
		clone[k] = v
	}

	return clone
}

// Info returns the service description.
func (s *Service) Info() Info {
	return s.info
}

// HTTP returns the shared transport.
func (s *Service) HTTP() *http.Client {
	return s.http
}

// Logger returns the configured logger.
func (s *Service) Logger() watson.Logger {
	return s.logger
}

// Endpoint returns the current endpoint.
func (s *Service) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.endpoint
}

// Version returns the version date.
func (s *Service) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// SetEndpoint replaces the endpoint used by calls built afterwards.
func (s *Service) SetEndpoint(endpoint string) error {
	normalized, err := watson.NormalizeEndpoint(endpoint)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.endpoint = normalized

	return nil
}

// SetUsernameAndPassword switches to basic credentials, or to IAM when the
// username is "apikey".
func (s *Service) SetUsernameAndPassword(username, password string) error {
	return s.updateSettings(func(settings *auth.Settings) {
		settings.Username = username
		settings.Password = password
		settings.IAMAPIKey = ""
		settings.IAMAccessToken = ""
		settings.SkipAuthentication = false
	})
}

// SetIAMAPIKey switches to IAM API key authentication. An empty url keeps the default.
func (s *Service) SetIAMAPIKey(apiKey, url string) error {
	if apiKey == "" {
		return watson.RequiredArgument("iam api key")
	}

	return s.updateSettings(func(settings *auth.Settings) {
		settings.IAMAPIKey = apiKey
		settings.IAMURL = url
		settings.IAMAccessToken = ""
		settings.Username = ""
		settings.Password = ""
		settings.SkipAuthentication = false
	})
}

// SetIAMAccessToken switches to a user-managed access token.
func (s *Service) SetIAMAccessToken(token string) error {
	if token == "" {
		return watson.RequiredArgument("iam access token")
	}

	return s.updateSettings(func(settings *auth.Settings) {
		settings.IAMAccessToken = token
		settings.SkipAuthentication = false
	})
}

// SetSkipAuthentication toggles sending requests without credentials.
func (s *Service) SetSkipAuthentication(skip bool) error {
	return s.updateSettings(func(settings *auth.Settings) {
		settings.SkipAuthentication = skip
	})
}

// SetDefaultHeaders replaces the headers added to every call.
func (s *Service) SetDefaultHeaders(headers map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaultHeaders = copyHeaders(headers)
}

func (s *Service) updateSettings(update func(*auth.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.settings
	update(&settings)

	authenticator, err := auth.NewAuthenticator(settings, nil)
	if err != nil {
		return err
	}

	s.settings = settings
	s.authenticator = authenticator

	return nil
}

// Target captures the current endpoint, credentials and headers.
func (s *Service) Target() Target {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Target{
		Endpoint:      s.endpoint,
		Version:       s.version,
		Authenticator: s.authenticator,
		Headers:       copyHeaders(s.defaultHeaders),
	}
}

// AnalyticsHeader returns the SDK analytics value for an operation.
func (s *Service) AnalyticsHeader(operation string) string {
	return fmt.Sprintf("service_name=%s;service_version=%s;operation_id=%s", s.info.Name, s.info.APIVersion, operation)
}
