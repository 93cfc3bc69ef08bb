package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// Service keys used in the config file.
const (
	ServiceDiscovery          = "discovery"
	ServiceLanguageTranslator = "language_translator"
	ServiceNLU                = "natural_language_understanding"
	ServiceSpeechToText       = "speech_to_text"
	ServiceConceptInsights    = "concept_insights"
)

const (
	configDirName  = ".watson"
	configFileName = "config.yml"
)

var knownServices = []string{
	ServiceConceptInsights,
	ServiceDiscovery,
	ServiceLanguageTranslator,
	ServiceNLU,
	ServiceSpeechToText,
}

// Config represents the CLI configuration.
type Config struct {
	Output   string                    `json:"output,omitempty"   yaml:"output,omitempty"`
	Cache    *CacheConfig              `json:"cache,omitempty"    yaml:"cache,omitempty"`
	Services map[string]*ServiceConfig `json:"services,omitempty" yaml:"services,omitempty"`
}

// CacheConfig selects a response cache shared by every command.
type CacheConfig struct {
	// Type is memory, redis, nats or none.
	Type    string `json:"type"              yaml:"type"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	TTL     string `json:"ttl,omitempty"     yaml:"ttl,omitempty"`
}

// ServiceConfig holds the endpoint and credentials of one service.
type ServiceConfig struct {
	URL         string `json:"url,omitempty"          yaml:"url,omitempty"`
	Version     string `json:"version,omitempty"      yaml:"version,omitempty"`
	Username    string `json:"username,omitempty"     yaml:"username,omitempty"`
	Password    string `json:"password,omitempty"     yaml:"password,omitempty"`
	IAMAPIKey   string `json:"iam_api_key,omitempty"  yaml:"iam_api_key,omitempty"`
	IAMURL      string `json:"iam_url,omitempty"      yaml:"iam_url,omitempty"`
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`

	// Tokens obtained with IAMAPIKey, kept between runs.
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Watson CLI configuration including service endpoints and credentials",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetCredentialsCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskConfig(config)

			return writeResult(cmd.OutOrStdout(), masked, func(table *tablewriter.Table) error {
				setHeader(table, "service", "property", "value")

				err := table.Append("", "output", formatConfigValue(masked.Output))
				if err != nil {
					return err
				}

				if masked.Cache != nil {
					err = table.Append("", "cache", masked.Cache.Type+" "+masked.Cache.Address)
					if err != nil {
						return err
					}
				}

				for _, name := range sortedServices(masked) {
					for _, row := range serviceRows(masked.Services[name]) {
						err = table.Append(name, row[0], row[1])
						if err != nil {
							return err
						}
					}
				}

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a global configuration value (output, cache.type, cache.address, cache.ttl)
or, with --service, a service value (url, version, iam_url).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config, err := loadConfig()
			if err != nil {
				return err
			}

			if service != "" {
				err = setServiceValue(config, service, key, value)
			} else {
				err = setGlobalValue(config, key, value)
			}

			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			return writeUpdate(cmd, "set", key, value, service)
		},
	}

	cmd.Flags().StringVarP(&service, "service", "s", "", "service to configure ("+strings.Join(knownServices, ", ")+")")

	return cmd
}

func setGlobalValue(config *Config, key, value string) error {
	switch key {
	case "output":
		err := validateOutputFormat(value)
		if err != nil {
			return err
		}

		config.Output = value
	case "cache.type", "cache.address", "cache.ttl":
		if config.Cache == nil {
			config.Cache = &CacheConfig{}
		}

		switch key {
		case "cache.type":
			config.Cache.Type = value
		case "cache.address":
			config.Cache.Address = value
		default:
			_, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid cache ttl %q: %w", value, err)
			}

			config.Cache.TTL = value
		}
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func setServiceValue(config *Config, service, key, value string) error {
	svc, err := ensureService(config, service)
	if err != nil {
		return err
	}

	switch key {
	case "url":
		svc.URL = value
	case "version":
		svc.Version = value
	case "iam_url":
		svc.IAMURL = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func ensureService(config *Config, service string) (*ServiceConfig, error) {
	if !isKnownService(service) {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownService, service)
	}

	if config.Services == nil {
		config.Services = make(map[string]*ServiceConfig)
	}

	svc, ok := config.Services[service]
	if !ok {
		svc = &ServiceConfig{}
		config.Services[service] = svc
	}

	return svc, nil
}

func isKnownService(service string) bool {
	for _, known := range knownServices {
		if known == service {
			return true
		}
	}

	return false
}

// configPath returns the config file in use: the --config flag, then
// $HOME/.watson/config.yml.
func configPath() (string, error) {
	if path := viper.GetString("config"); path != "" {
		return path, nil
	}

	if path := viper.ConfigFileUsed(); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName, configFileName), nil
}

func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	config := &Config{}

	// The path comes from the --config flag or the user's home directory.
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

func saveConfig(config *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func maskConfig(config *Config) *Config {
	masked := &Config{Output: config.Output, Cache: config.Cache}
	if len(config.Services) == 0 {
		return masked
	}

	masked.Services = make(map[string]*ServiceConfig, len(config.Services))

	for name, svc := range config.Services {
		clone := *svc
		clone.Password = maskSecret(svc.Password)
		clone.IAMAPIKey = maskSecret(svc.IAMAPIKey)
		clone.AccessToken = maskSecret(svc.AccessToken)
		clone.Token = maskSecret(svc.Token)
		clone.RefreshToken = maskSecret(svc.RefreshToken)
		masked.Services[name] = &clone
	}

	return masked
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}

	return constants.MaskedSecret
}

func sortedServices(config *Config) []string {
	names := make([]string, 0, len(config.Services))
	for name := range config.Services {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func serviceRows(svc *ServiceConfig) [][2]string {
	rows := [][2]string{
		{"url", formatConfigValue(svc.URL)},
		{"version", formatConfigValue(svc.Version)},
		{"username", formatConfigValue(svc.Username)},
		{"password", formatConfigValue(svc.Password)},
		{"iam_api_key", formatConfigValue(svc.IAMAPIKey)},
		{"iam_url", formatConfigValue(svc.IAMURL)},
		{"access_token", formatConfigValue(svc.AccessToken)},
	}

	if svc.TokenExpiresAt != nil {
		rows = append(rows, [2]string{"token_expires_at", svc.TokenExpiresAt.Format(time.RFC3339)})
	}

	return rows
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func writeUpdate(cmd *cobra.Command, action, key, value, service string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	if service != "" {
		result["service"] = service
	}

	return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
		setHeader(table, "property", "value")

		for _, row := range [][2]string{{"action", action}, {"key", key}, {"value", value}, {"service", service}} {
			if row[1] == "" {
				continue
			}

			err := table.Append(row[0], row[1])
			if err != nil {
				return err
			}
		}

		return nil
	})
}
