package auth

import (
	"sync"
	"time"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// Token represents an IAM token response.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	Expiration   int64     `json:"expiration,omitempty"`
	ExpiresAt    time.Time `json:"-"`
	RefreshAt    time.Time `json:"-"`
}

// Stamp derives ExpiresAt and RefreshAt from the lifetime fields, relative to
// issuedAt. The token is due for refresh once 80% of its lifetime has passed.
func (t *Token) Stamp(issuedAt time.Time) {
	var lifetime time.Duration

	switch {
	case t.ExpiresIn > 0:
		lifetime = time.Duration(t.ExpiresIn) * time.Second
	case t.Expiration > 0:
		lifetime = time.Unix(t.Expiration, 0).Sub(issuedAt)
	default:
		return
	}

	t.ExpiresAt = issuedAt.Add(lifetime)
	t.RefreshAt = issuedAt.Add(time.Duration(float64(lifetime) * constants.TokenRefreshFraction))
}

// Valid checks if the token is present and not about to expire.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// NeedsRefresh reports whether the token should be replaced before use.
func (t *Token) NeedsRefresh() bool {
	if !t.Valid() {
		return true
	}

	return !t.RefreshAt.IsZero() && !time.Now().Before(t.RefreshAt)
}

// TokenStore holds the current token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates a new token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set stores a new token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
