package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

func TestLoadConfig_MissingFile(t *testing.T) {
	useTempConfig(t)

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Empty(t, config.Services)
	assert.Empty(t, config.Output)
}

func TestConfigSet(t *testing.T) {
	path := useTempConfig(t)

	mustRun(t, NewConfigCommand(), "set", "output", "json")
	mustRun(t, NewConfigCommand(), "set", "cache.type", "memory")
	mustRun(t, NewConfigCommand(), "set", "cache.ttl", "90s")
	mustRun(t, NewConfigCommand(), "set", "--service", ServiceDiscovery, "url", "https://discovery.example.com/api")
	mustRun(t, NewConfigCommand(), "set", "-s", ServiceDiscovery, "version", "2019-04-30")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "json", config.Output)
	assert.Equal(t, &CacheConfig{Type: "memory", TTL: "90s"}, config.Cache)
	require.Contains(t, config.Services, ServiceDiscovery)
	assert.Equal(t, "https://discovery.example.com/api", config.Services[ServiceDiscovery].URL)
	assert.Equal(t, "2019-04-30", config.Services[ServiceDiscovery].Version)
}

func TestConfigSet_Errors(t *testing.T) {
	useTempConfig(t)

	_, err := run(t, NewConfigCommand(), "set", "colour", "blue")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	_, err = run(t, NewConfigCommand(), "set", "output", "xml")
	require.ErrorIs(t, err, constants.ErrUnknownOutputFormat)

	_, err = run(t, NewConfigCommand(), "set", "cache.ttl", "soon")
	require.Error(t, err)

	_, err = run(t, NewConfigCommand(), "set", "-s", "tone_analyzer", "url", "https://example.com")
	require.ErrorIs(t, err, constants.ErrUnknownService)

	_, err = run(t, NewConfigCommand(), "set", "-s", ServiceNLU, "password", "secret")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)
}

func TestConfigSetCredentials(t *testing.T) {
	useTempConfig(t)

	mustRun(t, NewConfigCommand(), "set-credentials", ServiceLanguageTranslator,
		"--url", "https://lt.example.com/api", "--username", "user", "--password", "pass")

	config, err := loadConfig()
	require.NoError(t, err)

	svc := config.Services[ServiceLanguageTranslator]
	require.NotNil(t, svc)
	assert.Equal(t, "https://lt.example.com/api", svc.URL)
	assert.Equal(t, "user", svc.Username)
	assert.Equal(t, "pass", svc.Password)

	mustRun(t, NewConfigCommand(), "set-credentials", ServiceLanguageTranslator, "--apikey", "key")

	config, err = loadConfig()
	require.NoError(t, err)

	svc = config.Services[ServiceLanguageTranslator]
	assert.Equal(t, "key", svc.IAMAPIKey)
	assert.Empty(t, svc.Username)
	assert.Empty(t, svc.Password)
	assert.Equal(t, "https://lt.example.com/api", svc.URL)
}

func TestConfigSetCredentials_Prompt(t *testing.T) {
	useTempConfig(t)

	cmd := NewConfigCommand()
	cmd.SetIn(bytes.NewBufferString("prompted-key\n"))
	cmd.SetArgs([]string{"set-credentials", ServiceSpeechToText, "--prompt"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prompted-key", config.Services[ServiceSpeechToText].IAMAPIKey)
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	useTempConfig(t)

	mustRun(t, NewConfigCommand(), "set-credentials", ServiceNLU, "--apikey", "very-secret")

	viper.Set("output", constants.FormatJSON)

	out := mustRun(t, NewConfigCommand(), "show")
	assert.NotContains(t, out, "very-secret")

	var shown Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, constants.MaskedSecret, shown.Services[ServiceNLU].IAMAPIKey)

	viper.Set("output", constants.FormatTable)

	out = mustRun(t, NewConfigCommand(), "show")
	assert.Contains(t, out, ServiceNLU)
	assert.NotContains(t, out, "very-secret")
}

func TestApplyCredentialFlags(t *testing.T) {
	expires := time.Now()

	tests := []struct {
		name  string
		svc   ServiceConfig
		flags credentialFlags
		want  ServiceConfig
	}{
		{
			name:  "access token replaces api key and cached token",
			svc:   ServiceConfig{IAMAPIKey: "key", Token: "cached", TokenExpiresAt: &expires},
			flags: credentialFlags{accessToken: "token"},
			want:  ServiceConfig{AccessToken: "token"},
		},
		{
			name:  "basic credentials replace access token",
			svc:   ServiceConfig{AccessToken: "token"},
			flags: credentialFlags{username: "user", password: "pass"},
			want:  ServiceConfig{Username: "user", Password: "pass"},
		},
		{
			name:  "url only keeps credentials",
			svc:   ServiceConfig{IAMAPIKey: "key", Token: "cached"},
			flags: credentialFlags{url: "https://example.com", iamURL: "https://iam.example.com"},
			want:  ServiceConfig{IAMAPIKey: "key", Token: "cached", URL: "https://example.com", IAMURL: "https://iam.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tt.svc
			applyCredentialFlags(&svc, tt.flags)
			assert.Equal(t, tt.want, svc)
		})
	}
}

func TestReadSecret(t *testing.T) {
	secret, err := readSecret(bytes.NewBufferString("  s3cret \nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	secret, err = readSecret(bytes.NewBufferString("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", secret)

	_, err = readSecret(bytes.NewBufferString("\n"))
	require.ErrorIs(t, err, constants.ErrEmptySecret)
}

func TestConfigPersister(t *testing.T) {
	useTempConfig(t)

	persister := NewConfigPersister()

	err := persister.UpdateServiceToken(ServiceDiscovery, "token", time.Now().Add(time.Hour), "refresh")
	require.ErrorIs(t, err, constants.ErrServiceNotFound)

	token, expiresAt := persister.LoadServiceToken(ServiceDiscovery)
	assert.Empty(t, token)
	assert.True(t, expiresAt.IsZero())

	mustRun(t, NewConfigCommand(), "set-credentials", ServiceDiscovery, "--apikey", "key")

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, persister.UpdateServiceToken(ServiceDiscovery, "token", expires, "refresh"))

	token, expiresAt = persister.LoadServiceToken(ServiceDiscovery)
	assert.Equal(t, "token", token)
	assert.True(t, expires.Equal(expiresAt))

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "refresh", config.Services[ServiceDiscovery].RefreshToken)
	assert.NotNil(t, config.Services[ServiceDiscovery].LastRefreshed)

	// New credentials drop the saved token.
	mustRun(t, NewConfigCommand(), "set-credentials", ServiceDiscovery, "--apikey", "other")

	token, _ = persister.LoadServiceToken(ServiceDiscovery)
	assert.Empty(t, token)
}
