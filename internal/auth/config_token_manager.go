package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister defines the interface for persisting tokens between runs.
type ConfigPersister interface {
	UpdateServiceToken(service, token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps an IAMTokenManager and persists every new token,
// so that short-lived processes such as the CLI reuse tokens across runs.
type ConfigTokenManager struct {
	iam       *IAMTokenManager
	persister ConfigPersister
	service   string
	mutex     sync.Mutex
	lastToken string
	onPersist func(error)
}

// NewConfigTokenManager creates a persisting token manager. An initial token
// from a previous run is used until it is due for refresh.
func NewConfigTokenManager(config *IAMConfig, persister ConfigPersister, service, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	iam := NewIAMTokenManager(config)
	if initialToken != "" {
		iam.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		iam:       iam,
		persister: persister,
		service:   service,
		lastToken: initialToken,
	}
}

// OnPersistError registers a hook for persistence failures. They never fail a request.
func (m *ConfigTokenManager) OnPersistError(fn func(error)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.onPersist = fn
}

// GetToken returns a valid access token and persists it when it changed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.iam.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a token refresh.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.iam.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.iam.SetToken(token, expiresAt)
	m.lastToken = token
}

// GetTokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	token := m.iam.Current()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistIfChanged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.iam.Current()
	if current == nil || current.AccessToken == m.lastToken {
		return
	}

	m.lastToken = current.AccessToken

	err := m.persistToken(current)
	if err != nil && m.onPersist != nil {
		m.onPersist(err)
	}
}

// persistToken saves the token to config.
func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.UpdateServiceToken(m.service, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update service token: %w", err)
	}

	return nil
}
