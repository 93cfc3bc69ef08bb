package languagetranslator_test

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/languagetranslator"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *languagetranslator.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := languagetranslator.New(&watson.Config{
		APIEndpoint:    server.URL,
		Version:        "2018-05-01",
		IAMAccessToken: "token",
	})
	require.NoError(t, err)

	return svc
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/translate", r.URL.Path)
		assert.Equal(t, "2018-05-01", r.URL.Query().Get("version"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "service_name=language_translator;service_version=v3;operation_id=translate",
			r.Header.Get("X-IBMCloud-SDK-Analytics"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"text":["hello","world"],"source":"en","target":"es"}`, string(body))

		writeJSON(w, http.StatusOK, `{"word_count":2,"character_count":10,"translations":[{"translation":"hola"},{"translation":"mundo"}]}`)
	})

	opts, err := languagetranslator.NewTranslateOptionsBuilder("hello").AddText("world").Source("en").Target("es").Build()
	require.NoError(t, err)

	call, err := svc.Translate(opts)
	require.NoError(t, err)

	result, err := call.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.WordCount)
	assert.Equal(t, []languagetranslator.Translation{{Translation: "hola"}, {Translation: "mundo"}}, result.Translations)
}

func TestIdentify(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/identify", r.URL.Path)
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "Bonjour tout le monde", string(body))

		writeJSON(w, http.StatusOK, `{"languages":[{"language":"fr","confidence":0.98},{"language":"it","confidence":0.01}]}`)
	})

	opts, err := languagetranslator.NewIdentifyOptions("Bonjour tout le monde")
	require.NoError(t, err)

	call, err := svc.Identify(opts)
	require.NoError(t, err)

	result, err := call.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Languages, 2)
	assert.Equal(t, "fr", result.Languages[0].Language)
	assert.InDelta(t, 0.98, result.Languages[0].Confidence, 1e-9)
}

func TestModels(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v3/identifiable_languages":
			writeJSON(w, http.StatusOK, `{"languages":[{"language":"af","name":"Afrikaans"}]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v3/models":
			assert.Equal(t, "en", r.URL.Query().Get("source"))
			assert.Equal(t, "true", r.URL.Query().Get("default"))
			assert.False(t, r.URL.Query().Has("target"))
			writeJSON(w, http.StatusOK, `{"models":[{"model_id":"en-es","source":"en","target":"es","default_model":true,"status":"available"}]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v3/models/en-es":
			writeJSON(w, http.StatusOK, `{"model_id":"en-es","customizable":true}`)
		case r.Method == http.MethodDelete:
			writeJSON(w, http.StatusNotFound, `{"code":404,"error":"Model not found"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()

	languages, err := svc.ListIdentifiableLanguages().Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Afrikaans", languages.Languages[0].Name)

	listOpts, err := languagetranslator.NewListModelsOptionsBuilder().Source("en").DefaultModels(true).Build()
	require.NoError(t, err)

	listCall, err := svc.ListModels(listOpts)
	require.NoError(t, err)

	models, err := listCall.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, models.Models, 1)
	assert.True(t, models.Models[0].DefaultModel)
	assert.Equal(t, languagetranslator.ModelStatusAvailable, models.Models[0].Status)

	modelOpts, err := languagetranslator.NewModelOptions("en-es")
	require.NoError(t, err)

	getCall, err := svc.GetModel(modelOpts)
	require.NoError(t, err)

	model, err := getCall.Execute(ctx)
	require.NoError(t, err)
	assert.True(t, model.Customizable)

	deleteCall, err := svc.DeleteModel(modelOpts)
	require.NoError(t, err)

	_, err = deleteCall.Execute(ctx)
	require.ErrorIs(t, err, watson.ErrNotFound)
	assert.Contains(t, err.Error(), "Model not found")
}

func TestCreateModel(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "en-es", r.URL.Query().Get("base_model_id"))
		assert.Equal(t, "custom", r.URL.Query().Get("name"))

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		assert.NoError(t, err)

		reader := multipart.NewReader(r.Body, params["boundary"])

		part, err := reader.NextPart()
		assert.NoError(t, err)
		assert.Equal(t, "forced_glossary", part.FormName())
		assert.Equal(t, "glossary.tmx", part.FileName())

		content, err := io.ReadAll(part)
		assert.NoError(t, err)
		assert.Equal(t, "<tmx/>", string(content))

		_, err = reader.NextPart()
		assert.ErrorIs(t, err, io.EOF)

		writeJSON(w, http.StatusOK, `{"model_id":"custom-1","base_model_id":"en-es","status":"uploading"}`)
	})

	opts, err := languagetranslator.NewCreateModelOptionsBuilder("en-es").
		Name("custom").
		ForcedGlossary(watson.FileFromReader(strings.NewReader("<tmx/>"), "glossary.tmx", "")).
		Build()
	require.NoError(t, err)

	call, err := svc.CreateModel(opts)
	require.NoError(t, err)

	model, err := call.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "custom-1", model.ModelID)
	assert.Equal(t, languagetranslator.ModelStatusUploading, model.Status)
}

func TestOptionsValidation(t *testing.T) {
	t.Parallel()

	_, err := languagetranslator.NewTranslateOptionsBuilder().Target("es").Build()
	require.ErrorIs(t, err, watson.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "text")

	_, err = languagetranslator.NewTranslateOptionsBuilder("hi").Build()
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	_, err = languagetranslator.NewTranslateOptionsBuilder("hi").ModelID("en-es").Build()
	require.NoError(t, err)

	_, err = languagetranslator.NewIdentifyOptions("")
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	_, err = languagetranslator.NewCreateModelOptionsBuilder("en-es").Build()
	require.ErrorIs(t, err, watson.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "parallel_corpus")

	_, err = languagetranslator.NewCreateModelOptionsBuilder("").ParallelCorpus(watson.FileFromPath("corpus.tmx")).Build()
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	_, err = languagetranslator.NewModelOptions("")
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	svc, err := languagetranslator.New(&watson.Config{Version: "2018-05-01", SkipAuthentication: true, DisableCredentialLookup: true})
	require.NoError(t, err)

	_, err = svc.Translate(nil)
	require.ErrorIs(t, err, watson.ErrNilOptions)
}

func TestOptionsRoundTrip(t *testing.T) {
	t.Parallel()

	translate, err := languagetranslator.NewTranslateOptionsBuilder("a", "b").ModelID("en-es").Build()
	require.NoError(t, err)

	rebuilt, err := translate.NewBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(translate, rebuilt))

	extended, err := translate.NewBuilder().AddText("c").Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, translate.Text)
	assert.Equal(t, []string{"a", "b", "c"}, extended.Text)

	list, err := languagetranslator.NewListModelsOptionsBuilder().Target("fr").Build()
	require.NoError(t, err)
	assert.Nil(t, list.Source)

	rebuiltList, err := list.NewBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(list, rebuiltList))

	corpus := watson.FileFromPath("corpus.tmx")

	create, err := languagetranslator.NewCreateModelOptionsBuilder("en-es").ParallelCorpus(corpus).Build()
	require.NoError(t, err)

	rebuiltCreate, err := create.NewBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(create, rebuiltCreate, cmp.Comparer(func(a, b *watson.FileSource) bool { return a == b })))
}
