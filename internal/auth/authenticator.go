package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// TokenManager defines the interface for managing bearer tokens.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Authenticator attaches credentials to an outgoing request.
type Authenticator interface {
	Authenticate(ctx context.Context, req *http.Request) error
	// Scheme names the mechanism for logs: basic, bearer, iam or none.
	Scheme() string
}

// BasicAuthenticator sends HTTP Basic credentials.
type BasicAuthenticator struct {
	Username string
	Password string
}

// Authenticate implements Authenticator.
func (a *BasicAuthenticator) Authenticate(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(a.Username, a.Password)

	return nil
}

// Scheme implements Authenticator.
func (a *BasicAuthenticator) Scheme() string {
	return "basic"
}

// TokenAuthenticator sends a Bearer token obtained from a TokenManager.
type TokenAuthenticator struct {
	Manager TokenManager
	scheme  string
}

// NewTokenAuthenticator wraps a token manager.
func NewTokenAuthenticator(manager TokenManager, scheme string) *TokenAuthenticator {
	if scheme == "" {
		scheme = "bearer"
	}

	return &TokenAuthenticator{Manager: manager, scheme: scheme}
}

// Authenticate implements Authenticator.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, req *http.Request) error {
	token, err := a.Manager.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get authentication token: %w", err)
	}

	req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)

	return nil
}

// Scheme implements Authenticator.
func (a *TokenAuthenticator) Scheme() string {
	return a.scheme
}

// NoAuthAuthenticator leaves requests untouched.
type NoAuthAuthenticator struct{}

// Authenticate implements Authenticator.
func (NoAuthAuthenticator) Authenticate(context.Context, *http.Request) error {
	return nil
}

// Scheme implements Authenticator.
func (NoAuthAuthenticator) Scheme() string {
	return "none"
}

// StaticTokenManager serves a user-managed access token as-is.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager for a caller-supplied token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	store := NewTokenStore()
	store.Set(&Token{AccessToken: token, TokenType: "bearer"})

	return &StaticTokenManager{store: store}
}

// GetToken returns the configured token without checking its expiry.
func (m *StaticTokenManager) GetToken(context.Context) (string, error) {
	token := m.store.Get()
	if token == nil || token.AccessToken == "" {
		return "", ErrNoToken
	}

	return token.AccessToken, nil
}

// RefreshToken is a no-op; the caller owns refreshing.
func (m *StaticTokenManager) RefreshToken(context.Context) error {
	return nil
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}

// Settings is the authentication part of a service configuration.
type Settings struct {
	Username           string
	Password           string
	IAMAPIKey          string
	IAMURL             string
	IAMAccessToken     string
	SkipAuthentication bool

	// Persister and Service enable token reuse across runs for IAM API keys.
	Persister watson.TokenPersister
	Service   string
}

// IsIAMAPIKey reports whether a username/password pair is really an IAM API
// key: the username is "apikey" and the password is not a private deployment key.
func IsIAMAPIKey(username, password string) bool {
	return username == constants.APIKeyUsername && !strings.HasPrefix(password, constants.ICPAPIKeyPrefix)
}

// Resolve normalises the settings: a username/password pair that carries an
// IAM API key is moved to IAMAPIKey.
func (s Settings) Resolve() Settings {
	if s.IAMAPIKey == "" && IsIAMAPIKey(s.Username, s.Password) {
		s.IAMAPIKey = s.Password
		s.Username = ""
		s.Password = ""
	}

	return s
}

// Validate rejects credentials that look like pasted JSON fragments.
func (s Settings) Validate() error {
	fields := map[string]string{
		"username":         s.Username,
		"password":         s.Password,
		"iam api key":      s.IAMAPIKey,
		"iam url":          s.IAMURL,
		"iam access token": s.IAMAccessToken,
	}

	for name, value := range fields {
		if watson.HasBadStartOrEndChar(value) {
			return fmt.Errorf("%s: %w", name, watson.ErrBadCharacters)
		}
	}

	if s.Username != "" && s.Password == "" {
		return watson.RequiredArgument("password")
	}

	return nil
}

// NewAuthenticator picks the authenticator for the settings. A user-managed
// access token wins over an API key, which wins over basic credentials.
// Without any credentials the request is sent unauthenticated.
func NewAuthenticator(settings Settings, httpClient *http.Client) (Authenticator, error) {
	settings = settings.Resolve()

	err := settings.Validate()
	if err != nil {
		return nil, err
	}

	switch {
	case settings.SkipAuthentication:
		return NoAuthAuthenticator{}, nil
	case settings.IAMAccessToken != "":
		return NewTokenAuthenticator(NewStaticTokenManager(settings.IAMAccessToken), "bearer"), nil
	case settings.IAMAPIKey != "":
		config := &IAMConfig{
			URL:        settings.IAMURL,
			APIKey:     settings.IAMAPIKey,
			HTTPClient: httpClient,
		}

		if settings.Persister != nil {
			token, expiresAt := settings.Persister.LoadServiceToken(settings.Service)

			return NewTokenAuthenticator(NewConfigTokenManager(config, settings.Persister, settings.Service, token, expiresAt), "iam"), nil
		}

		return NewTokenAuthenticator(NewIAMTokenManager(config), "iam"), nil
	case settings.Username != "":
		return &BasicAuthenticator{Username: settings.Username, Password: settings.Password}, nil
	default:
		return NoAuthAuthenticator{}, nil
	}
}
