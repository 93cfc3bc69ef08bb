//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestConfigWorkflow stores credentials and checks they are never shown.
func TestConfigWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("config", "set-credentials", "speech_to_text", "--apikey", "integration-secret")
	require.NoError(t, err, "Failed to set credentials: %s", stderr)

	_, stderr, err = runner.Run("config", "set", "--service", "speech_to_text", "url", "https://stt.example.com/api")
	require.NoError(t, err, "Failed to set url: %s", stderr)

	_, stderr, err = runner.Run("config", "set", "output", "yaml")
	require.NoError(t, err, "Failed to set output: %s", stderr)

	stdout, stderr, err := runner.Run("config", "show")
	require.NoError(t, err, "Failed to show config: %s", stderr)
	AssertYAMLOutput(t, stdout)
	assert.NotContains(t, stdout, "integration-secret")
	assert.Contains(t, stdout, "https://stt.example.com/api")

	info, err := os.Stat(runner.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The raw file keeps the secret for later runs.
	data, err := os.ReadFile(runner.ConfigFile())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, string(data), "integration-secret")

	_, _, err = runner.Run("config", "set", "output", "xml")
	require.Error(t, err)
}

// TestTranslatorWorkflow identifies, translates and lists models.
func TestTranslatorWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissing(t, "Language Translator", config.Translator)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.SetupService("language_translator", config.Translator))

	// 1. Identify
	stdout, stderr, err := runner.Run("translate", "identify", "Où est la gare?", "--output", "json")
	require.NoError(t, err, "Failed to identify: %s", stderr)

	var identified struct {
		Languages []struct {
			Language   string  `json:"language"`
			Confidence float64 `json:"confidence"`
		} `json:"languages"`
	}

	AssertJSONOutput(t, stdout, &identified)
	require.NotEmpty(t, identified.Languages)
	assert.Equal(t, "fr", identified.Languages[0].Language)

	// 2. Translate with a model id
	stdout, stderr, err = runner.Run("translate", "text", "Good morning", "--model", "en-es", "--output", "json")
	require.NoError(t, err, "Failed to translate: %s", stderr)

	var translated struct {
		Translations []struct {
			Translation string `json:"translation"`
		} `json:"translations"`
	}

	AssertJSONOutput(t, stdout, &translated)
	require.Len(t, translated.Translations, 1)
	assert.NotEmpty(t, translated.Translations[0].Translation)

	// 3. List models as YAML
	stdout, stderr, err = runner.Run("translate", "models", "--source", "en", "--output", "yaml")
	require.NoError(t, err, "Failed to list models: %s", stderr)
	AssertYAMLOutput(t, stdout)
	assert.Contains(t, stdout, "model_id")

	// 4. The IAM token obtained by the first command is reused.
	data, err := os.ReadFile(runner.ConfigFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "token_expires_at")
}

// TestNLUWorkflow analyzes text with several features.
func TestNLUWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissing(t, "Natural Language Understanding", config.NLU)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.SetupService("natural_language_understanding", config.NLU))

	stdout, stderr, err := runner.Run("nlu", "analyze",
		"--text", "IBM is an American multinational technology company headquartered in Armonk, New York.",
		"--feature", "entities,keywords,sentiment",
		"--output", "json")
	require.NoError(t, err, "Failed to analyze: %s", stderr)

	var analysis struct {
		Entities []struct {
			Text string `json:"text"`
			Type string `json:"type"`
		} `json:"entities"`
		Keywords  []interface{} `json:"keywords"`
		Sentiment interface{}   `json:"sentiment"`
	}

	AssertJSONOutput(t, stdout, &analysis)
	assert.NotEmpty(t, analysis.Entities)
	assert.NotEmpty(t, analysis.Keywords)
	assert.NotNil(t, analysis.Sentiment)

	_, _, err = runner.Run("nlu", "analyze", "--feature", "entities")
	require.Error(t, err, "Analyze without input should fail")

	_, _, err = runner.Run("nlu", "analyze", "--text", "hello", "--feature", "tone")
	require.Error(t, err, "Unknown features should be rejected")
}
