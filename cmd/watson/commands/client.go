package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Version dates used when the config does not set one.
var defaultVersions = map[string]string{
	ServiceDiscovery:          "2018-12-03",
	ServiceLanguageTranslator: "2018-05-01",
	ServiceNLU:                "2018-11-16",
}

// newServiceConfig builds the client config of a service from the config
// file, the global flags and the WATSON_* environment.
func newServiceConfig(ctx context.Context, service string) (*watson.Config, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose := viper.GetBool("verbose")
	logger := newLogger(verbose)

	cfg := &watson.Config{
		Version:        defaultVersions[service],
		Logger:         logger,
		Debug:          verbose,
		RetryMax:       viper.GetInt("retries"),
		TokenPersister: NewConfigPersister(),
		Interceptors:   watson.NewInterceptorChain().AddRequestInterceptor(watson.RequestIDInterceptor()),
	}

	if verbose {
		cfg.Interceptors.
			AddRequestInterceptor(watson.LoggingInterceptor(logger)).
			AddResponseInterceptor(watson.LoggingResponseInterceptor(logger))
	}

	if svc, ok := config.Services[service]; ok {
		applyServiceConfig(cfg, svc)
	}

	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		cfg.APIEndpoint = endpoint
	}

	if version := viper.GetString("version-date"); version != "" {
		cfg.Version = version
	}

	if viper.GetBool("no-auth") {
		cfg.SkipAuthentication = true
	}

	cache, ttl, err := newCache(ctx, config.Cache)
	if err != nil {
		return nil, err
	}

	cfg.Cache = cache
	cfg.CacheTTL = ttl

	return cfg, nil
}

func applyServiceConfig(cfg *watson.Config, svc *ServiceConfig) {
	cfg.APIEndpoint = svc.URL
	cfg.Username = svc.Username
	cfg.Password = svc.Password
	cfg.IAMAPIKey = svc.IAMAPIKey
	cfg.IAMURL = svc.IAMURL
	cfg.IAMAccessToken = svc.AccessToken

	if svc.Version != "" {
		cfg.Version = svc.Version
	}
}

func newLogger(verbose bool) watson.Logger {
	if !verbose {
		return watson.NopLogger{}
	}

	return watson.NewConsoleLogger(os.Stderr, "debug")
}

func newCache(ctx context.Context, settings *CacheConfig) (watson.Cache, time.Duration, error) {
	if settings == nil || settings.Type == "" || settings.Type == string(watson.CacheTypeNone) {
		return nil, 0, nil
	}

	ttl := constants.DefaultCacheTTL

	if settings.TTL != "" {
		parsed, err := time.ParseDuration(settings.TTL)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid cache ttl %q: %w", settings.TTL, err)
		}

		ttl = parsed
	}

	builder := watson.NewCacheBuilder().WithType(watson.CacheType(settings.Type))

	switch watson.CacheType(settings.Type) {
	case watson.CacheTypeRedis:
		builder.WithRedisConfig(&watson.RedisCacheConfig{Addr: settings.Address})
	case watson.CacheTypeNATS:
		builder.WithNATSConfig(&watson.NATSKVConfig{URL: settings.Address, TTL: ttl})
	}

	cache, err := builder.Build(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create %s cache: %w", settings.Type, err)
	}

	return cache, ttl, nil
}
