//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ServiceCredentials are the endpoint and API key of one service under test.
type ServiceCredentials struct {
	URL    string
	APIKey string
}

func (c ServiceCredentials) missing() bool {
	return c.APIKey == ""
}

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Translator ServiceCredentials
	NLU        ServiceCredentials
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Translator: ServiceCredentials{
			URL:    os.Getenv("WATSON_IT_TRANSLATOR_URL"),
			APIKey: os.Getenv("WATSON_IT_TRANSLATOR_APIKEY"),
		},
		NLU: ServiceCredentials{
			URL:    os.Getenv("WATSON_IT_NLU_URL"),
			APIKey: os.Getenv("WATSON_IT_NLU_APIKEY"),
		},
		BinaryPath: binaryPath(),
		Verbose:    os.Getenv("WATSON_IT_VERBOSE") == "true",
	}
}

// binaryPath determines the path to the watson binary
func binaryPath() string {
	if path := os.Getenv("WATSON_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../watson", "./watson", "../watson"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "watson"
}

// SkipIfMissingBinary skips the test when the watson binary cannot be found.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("watson binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// SkipIfMissing skips the test when the credentials of a service are not set.
func (config *TestConfig) SkipIfMissing(t *testing.T, name string, creds ServiceCredentials) {
	t.Helper()

	config.SkipIfMissingBinary(t)

	if creds.missing() {
		t.Skipf("%s credentials not set, skipping integration test", name)
	}
}

// CommandRunner runs the watson binary against a private config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// ConfigFile returns the config file used by every command.
func (runner *CommandRunner) ConfigFile() string {
	return runner.configFile
}

// Run executes a watson command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a watson command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// SetupService stores the credentials of a service in the runner's config.
func (runner *CommandRunner) SetupService(service string, creds ServiceCredentials) error {
	args := []string{"config", "set-credentials", service, "--apikey", creds.APIKey}
	if creds.URL != "" {
		args = append(args, "--url", creds.URL)
	}

	_, stderr, err := runner.Run(args...)
	if err != nil {
		return fmt.Errorf("failed to configure %s: %s", service, stderr)
	}

	return nil
}

// AssertJSONOutput decodes command output as JSON into target.
func AssertJSONOutput(t *testing.T, output string, target interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal([]byte(output), target), "Output is not JSON: %s", output)
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var decoded interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded), "Output is not YAML: %s", output)
	require.NotNil(t, decoded)
}
