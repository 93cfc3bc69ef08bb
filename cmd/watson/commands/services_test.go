package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/conceptinsights"
	"github.com/fivetwenty-io/watson-go/pkg/languagetranslator"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// serveAt points every command at server and disables authentication.
func serveAt(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	viper.Set("endpoint", server.URL)
	viper.Set("no-auth", true)
}

func TestTranslateIdentify(t *testing.T) {
	useTempConfig(t)

	serveAt(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/identify", r.URL.Path)
		assert.Equal(t, "2018-05-01", r.URL.Query().Get("version"))
		assert.NotEmpty(t, r.Header.Get(constants.HeaderRequestID))
		assert.Empty(t, r.Header.Get(constants.HeaderAuthorization))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "hola mundo", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"languages":[{"language":"es","confidence":0.94},{"language":"pt","confidence":0.03},{"language":"it","confidence":0.01}]}`))
	})

	viper.Set("output", constants.FormatJSON)

	out := mustRun(t, NewTranslateCommand(), "identify", "--limit", "2", "hola", "mundo")

	var result languagetranslator.IdentifiedLanguages
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Languages, 2)
	assert.Equal(t, "es", result.Languages[0].Language)
}

func TestTranslateIdentify_ConfiguredVersion(t *testing.T) {
	useTempConfig(t)

	mustRun(t, NewConfigCommand(), "set", "-s", ServiceLanguageTranslator, "version", "2020-01-01")

	serveAt(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2020-01-01", r.URL.Query().Get("version"))
		_, _ = w.Write([]byte(`{"languages":[]}`))
	})

	mustRun(t, NewTranslateCommand(), "identify", "bonjour")
}

func TestTranslateIdentify_ServiceError(t *testing.T) {
	useTempConfig(t)

	serveAt(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Text is required","code":400}`))
	})

	_, err := run(t, NewTranslateCommand(), "identify", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Text is required")
}

func TestConceptsSearch(t *testing.T) {
	useTempConfig(t)

	serveAt(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/graphs/wikipedia/en-20120601/label_search", r.URL.Path)
		assert.Equal(t, "ibm", r.URL.Query().Get("query"))
		assert.Equal(t, "true", r.URL.Query().Get("prefix"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))

		_, _ = w.Write([]byte(`{"matches":[{"id":"/graphs/wikipedia/en-20120601/concepts/IBM","label":"IBM"}]}`))
	})

	viper.Set("output", constants.FormatJSON)

	out := mustRun(t, NewConceptsCommand(), "search", "ibm", "--prefix", "--limit", "3")

	var result conceptinsights.Matches
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "IBM", result.Matches[0].Label)
}

func TestConceptsSearch_RequiresGraph(t *testing.T) {
	useTempConfig(t)

	_, err := run(t, NewConceptsCommand(), "search", "ibm", "--graph", "")
	require.ErrorIs(t, err, constants.ErrGraphRequired)

	_, err = run(t, NewConceptsCommand(), "annotate", "text", "--account", "")
	require.ErrorIs(t, err, constants.ErrAccountRequired)
}

func TestBuildAnalyzeOptions(t *testing.T) {
	opts, err := buildAnalyzeOptions(analyzeFlags{text: "IBM is in Armonk", features: []string{"entities", "Sentiment"}, limit: 2})
	require.NoError(t, err)
	require.NotNil(t, opts.Features.Entities)
	require.NotNil(t, opts.Features.Entities.Limit)
	assert.Equal(t, int64(2), *opts.Features.Entities.Limit)
	assert.NotNil(t, opts.Features.Sentiment)
	assert.Nil(t, opts.Features.Keywords)

	_, err = buildAnalyzeOptions(analyzeFlags{features: []string{"entities"}})
	require.ErrorIs(t, err, constants.ErrInputRequired)

	_, err = buildAnalyzeOptions(analyzeFlags{text: "x", url: "https://example.com", features: []string{"entities"}})
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	_, err = buildAnalyzeOptions(analyzeFlags{text: "x"})
	require.ErrorIs(t, err, constants.ErrFeatureRequired)

	_, err = buildAnalyzeOptions(analyzeFlags{text: "x", features: []string{"tone"}})
	require.ErrorIs(t, err, constants.ErrUnknownFeature)
}

func TestNewServiceConfig(t *testing.T) {
	useTempConfig(t)

	mustRun(t, NewConfigCommand(), "set-credentials", ServiceDiscovery,
		"--url", "https://discovery.example.com/api", "--username", "user", "--password", "pass")
	mustRun(t, NewConfigCommand(), "set", "cache.type", "memory")

	viper.Set("retries", 2)

	cfg, err := newServiceConfig(t.Context(), ServiceDiscovery)
	require.NoError(t, err)
	assert.Equal(t, "https://discovery.example.com/api", cfg.APIEndpoint)
	assert.Equal(t, "2018-12-03", cfg.Version)
	assert.Equal(t, "user", cfg.Username)
	assert.Equal(t, 2, cfg.RetryMax)
	assert.NotNil(t, cfg.Cache)
	assert.Equal(t, constants.DefaultCacheTTL, cfg.CacheTTL)
	assert.NotNil(t, cfg.TokenPersister)

	viper.Set("version-date", "2019-04-30")
	viper.Set("endpoint", "https://other.example.com")

	cfg, err = newServiceConfig(t.Context(), ServiceDiscovery)
	require.NoError(t, err)
	assert.Equal(t, "2019-04-30", cfg.Version)
	assert.Equal(t, "https://other.example.com", cfg.APIEndpoint)
}
