package watson

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

// CredentialFileName is the credential file looked up in the home and
// working directories.
const CredentialFileName = "ibm-credentials.env"

// VCAPServicesEnv is the environment variable holding bound service credentials.
const VCAPServicesEnv = "VCAP_SERVICES"

// Credentials are connection settings resolved from the environment.
type Credentials struct {
	URL       string
	Username  string
	Password  string
	IAMAPIKey string
	IAMURL    string
	// Source names where the credentials were found.
	Source string
}

// Empty reports whether nothing usable was resolved.
func (c *Credentials) Empty() bool {
	return c == nil || (c.URL == "" && c.Username == "" && c.Password == "" && c.IAMAPIKey == "")
}

// CredentialLoader resolves credentials for a service from, in order, a
// credential file, VCAP_SERVICES and plain environment variables.
type CredentialLoader struct {
	// HomeDir is searched first for the credential file. Defaults to the user's home.
	HomeDir string
	// WorkDir is searched second. Defaults to the working directory.
	WorkDir string
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
	// Plan restricts VCAP_SERVICES matches to instances on this plan.
	Plan string
}

// LoadCredentials resolves credentials for serviceName with the default loader.
func LoadCredentials(serviceName string) (*Credentials, error) {
	return (&CredentialLoader{}).Load(serviceName)
}

// Load resolves credentials for serviceName. The name is matched as a prefix
// of VCAP_SERVICES keys and, with dashes replaced by underscores, as the key
// prefix in the credential file and environment.
func (l *CredentialLoader) Load(serviceName string) (*Credentials, error) {
	if serviceName == "" {
		return nil, RequiredArgument("service name")
	}

	for _, dir := range l.searchDirs() {
		creds, err := l.fromFile(filepath.Join(dir, CredentialFileName), serviceName)
		if err != nil {
			return nil, err
		}

		if !creds.Empty() {
			return creds, nil
		}
	}

	if creds := l.fromVCAP(serviceName); !creds.Empty() {
		return creds, nil
	}

	if creds := l.fromEnv(serviceName); !creds.Empty() {
		return creds, nil
	}

	return nil, fmt.Errorf("%w for %s", ErrNoCredentialsFound, serviceName)
}

func (l *CredentialLoader) getenv(key string) string {
	if l.Getenv != nil {
		return l.Getenv(key)
	}

	return os.Getenv(key)
}

func (l *CredentialLoader) searchDirs() []string {
	home := l.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}

	work := l.WorkDir
	if work == "" {
		work, _ = os.Getwd()
	}

	dirs := make([]string, 0, 2)
	for _, dir := range []string{home, work} {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func fileKeyPrefix(serviceName string) string {
	return strings.ToLower(strings.ReplaceAll(serviceName, "-", "_")) + "_"
}

// fromFile reads an env-format credential file. A missing file yields empty credentials.
func (l *CredentialLoader) fromFile(path, serviceName string) (*Credentials, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Credentials{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	err = v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("reading credential file %s: %w", path, err)
	}

	prefix := fileKeyPrefix(serviceName)

	apiKey := v.GetString(prefix + "apikey")
	if apiKey == "" {
		apiKey = v.GetString(prefix + "api_key")
	}

	return &Credentials{
		URL:       v.GetString(prefix + "url"),
		Username:  v.GetString(prefix + "username"),
		Password:  v.GetString(prefix + "password"),
		IAMAPIKey: apiKey,
		IAMURL:    v.GetString(prefix + "iam_url"),
		Source:    path,
	}, nil
}

// fromVCAP scans VCAP_SERVICES for the first matching instance.
func (l *CredentialLoader) fromVCAP(serviceName string) *Credentials {
	raw := l.getenv(VCAPServicesEnv)
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}

	var found *Credentials

	gjson.Parse(raw).ForEach(func(key, instances gjson.Result) bool {
		if !strings.HasPrefix(key.String(), serviceName) {
			return true
		}

		for _, instance := range instances.Array() {
			if l.Plan != "" && !strings.EqualFold(instance.Get("plan").String(), l.Plan) {
				continue
			}

			creds := instance.Get("credentials")

			apiKey := creds.Get("apikey").String()
			if apiKey == "" {
				apiKey = creds.Get("iam_apikey").String()
			}

			found = &Credentials{
				URL:       creds.Get("url").String(),
				Username:  creds.Get("username").String(),
				Password:  creds.Get("password").String(),
				IAMAPIKey: apiKey,
				IAMURL:    creds.Get("iam_url").String(),
				Source:    VCAPServicesEnv,
			}

			return false
		}

		return true
	})

	return found
}

// fromEnv reads <SERVICE>_URL, <SERVICE>_APIKEY and friends.
func (l *CredentialLoader) fromEnv(serviceName string) *Credentials {
	prefix := strings.ToUpper(fileKeyPrefix(serviceName))

	return &Credentials{
		URL:       l.getenv(prefix + "URL"),
		Username:  l.getenv(prefix + "USERNAME"),
		Password:  l.getenv(prefix + "PASSWORD"),
		IAMAPIKey: l.getenv(prefix + "APIKEY"),
		IAMURL:    l.getenv(prefix + "IAM_URL"),
		Source:    "environment",
	}
}

// HasBadStartOrEndChar reports whether value starts or ends with a curly
// bracket or a double quote.
func HasBadStartOrEndChar(value string) bool {
	if value == "" {
		return false
	}

	const bad = `{}"`

	return strings.ContainsRune(bad, rune(value[0])) || strings.ContainsRune(bad, rune(value[len(value)-1]))
}

// NormalizeEndpoint validates an endpoint and trims a trailing slash.
func NormalizeEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return "", ErrEndpointRequired
	}

	if HasBadStartOrEndChar(endpoint) {
		return "", fmt.Errorf("endpoint: %w", ErrBadCharacters)
	}

	return strings.TrimSuffix(endpoint, "/"), nil
}
