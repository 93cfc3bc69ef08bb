package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// ConfigPersister keeps IAM tokens in the CLI config file between runs.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// LoadServiceToken returns the token saved for a service, if any.
func (p *ConfigPersister) LoadServiceToken(service string) (string, time.Time) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig()
	if err != nil {
		return "", time.Time{}
	}

	svc, ok := config.Services[service]
	if !ok || svc.Token == "" || svc.TokenExpiresAt == nil {
		return "", time.Time{}
	}

	return svc.Token, *svc.TokenExpiresAt
}

// UpdateServiceToken saves a new token for a service.
func (p *ConfigPersister) UpdateServiceToken(service, token string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	svc, ok := config.Services[service]
	if !ok {
		return fmt.Errorf("service configuration for '%s': %w", service, constants.ErrServiceNotFound)
	}

	svc.Token = token
	if !expiresAt.IsZero() {
		svc.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		svc.RefreshToken = refreshToken
	}

	now := time.Now()
	svc.LastRefreshed = &now

	return saveConfig(config)
}
