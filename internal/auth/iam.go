package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Static errors for err113 compliance.
var (
	ErrNoToken     = errors.New("no access token available")
	ErrNoAPIKey    = errors.New("no valid credentials available: IAM API key is empty")
	ErrEmptyToken  = errors.New("token response carried no access token")
	ErrTokenFailed = errors.New("token request failed")
)

// IAMConfig configures an IAMTokenManager.
type IAMConfig struct {
	// URL of the token endpoint. Defaults to the public IAM endpoint.
	URL string
	// APIKey exchanged for tokens.
	APIKey string
	// HTTPClient used for token requests. A retrying client is created when nil.
	HTTPClient *http.Client
}

// IAMTokenManager exchanges an API key for access tokens and refreshes them
// once 80% of their lifetime has passed. It is safe for concurrent use; at
// most one token request is in flight at a time.
type IAMTokenManager struct {
	config *IAMConfig
	store  *TokenStore
	client *http.Client
	mu     sync.Mutex
	now    func() time.Time
}

// NewIAMTokenManager creates a token manager.
func NewIAMTokenManager(config *IAMConfig) *IAMTokenManager {
	if config == nil {
		config = &IAMConfig{}
	}

	if config.URL == "" {
		config.URL = constants.DefaultIAMURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = constants.LowRetryMax
		retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
		retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
		retryClient.Logger = nil
		retryClient.HTTPClient.Timeout = constants.ShortHTTPTimeout
		httpClient = retryClient.StandardClient()
	}

	return &IAMTokenManager{
		config: config,
		store:  NewTokenStore(),
		client: httpClient,
		now:    time.Now,
	}
}

// GetToken returns a usable access token, requesting or refreshing one when needed.
func (m *IAMTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token != nil && !token.NeedsRefresh() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.store.Get()
	if current != nil && !current.NeedsRefresh() {
		return current.AccessToken, nil
	}

	token, err := m.obtain(ctx, current)
	if err != nil {
		return "", err
	}

	m.store.Set(token)

	return token.AccessToken, nil
}

// RefreshToken forces a new token request.
func (m *IAMTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.obtain(ctx, m.store.Get())
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken stores a token obtained elsewhere.
func (m *IAMTokenManager) SetToken(token string, expiresAt time.Time) {
	stored := &Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}
	if !expiresAt.IsZero() {
		lifetime := expiresAt.Sub(m.now())
		stored.RefreshAt = m.now().Add(time.Duration(float64(lifetime) * constants.TokenRefreshFraction))
	}

	m.store.Set(stored)
}

// Current returns the stored token, if any.
func (m *IAMTokenManager) Current() *Token {
	return m.store.Get()
}

// obtain refreshes with the refresh token when one is held and falls back to
// the API key grant.
func (m *IAMTokenManager) obtain(ctx context.Context, current *Token) (*Token, error) {
	if current != nil && current.RefreshToken != "" {
		token, err := m.request(ctx, url.Values{
			"grant_type":    {constants.IAMGrantTypeRefresh},
			"refresh_token": {current.RefreshToken},
		})
		if err == nil {
			return token, nil
		}
	}

	if m.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return m.request(ctx, url.Values{
		"grant_type":    {constants.IAMGrantTypeAPIKey},
		"apikey":        {m.config.APIKey},
		"response_type": {constants.IAMResponseType},
	})
}

func (m *IAMTokenManager) request(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set(constants.HeaderContentType, constants.MediaTypeFormURLEncoded)
	req.Header.Set(constants.HeaderAccept, constants.MediaTypeJSON)
	req.Header.Set(constants.HeaderAuthorization, constants.IAMBasicCredentials)

	issuedAt := m.now()

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &watson.TransportError{Method: http.MethodPost, URL: m.config.URL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &watson.TransportError{Method: http.MethodPost, URL: m.config.URL, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %w", ErrTokenFailed, watson.NewServiceResponseError(resp.StatusCode, resp.Header, body))
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, ErrEmptyToken
	}

	token.Stamp(issuedAt)

	return &token, nil
}
