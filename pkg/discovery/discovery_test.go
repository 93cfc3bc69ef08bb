package discovery_test

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/discovery"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

const testVersion = "2018-03-05"

func newTestClient(t *testing.T, handler http.HandlerFunc) *discovery.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := discovery.New(&watson.Config{
		APIEndpoint: server.URL,
		Version:     testVersion,
		Username:    "user",
		Password:    "pass",
	})
	require.NoError(t, err)

	return svc
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires version", func(t *testing.T) {
		t.Parallel()

		_, err := discovery.New(&watson.Config{SkipAuthentication: true, DisableCredentialLookup: true})
		require.ErrorIs(t, err, watson.ErrVersionRequired)
		assert.True(t, watson.IsInvalidArgument(err))
	})

	t.Run("uses the default endpoint", func(t *testing.T) {
		t.Parallel()

		svc, err := discovery.New(&watson.Config{Version: testVersion, SkipAuthentication: true, DisableCredentialLookup: true})
		require.NoError(t, err)
		assert.Equal(t, discovery.DefaultURL, svc.Endpoint())
	})
}

func TestCreateEnvironment(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/environments", r.URL.Path)
		assert.Equal(t, testVersion, r.URL.Query().Get("version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"test-env"}`, string(body))

		writeJSON(w, http.StatusCreated, `{
			"environment_id": "env-1",
			"name": "test-env",
			"status": "active",
			"created": "2017-02-11T18:51:59.287Z",
			"index_capacity": {"disk_usage": {"used_bytes": 10, "maximum_allowed_bytes": 100}}
		}`)
	})

	opts, err := discovery.NewCreateEnvironmentOptionsBuilder("test-env").Build()
	require.NoError(t, err)

	call, err := svc.CreateEnvironment(opts)
	require.NoError(t, err)

	env, err := call.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-1", env.EnvironmentID)
	assert.Equal(t, "active", env.Status)
	require.NotNil(t, env.Created)
	assert.Equal(t, 2017, env.Created.Year())
	require.NotNil(t, env.IndexCapacity)
	assert.Equal(t, int64(100), env.IndexCapacity.DiskUsage.MaximumAllowedBytes)
}

func TestQuery(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/environments/env-1/collections/col-1/query", r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, "5", query.Get("count"))
		assert.Equal(t, "5", query.Get("offset"))
		assert.Equal(t, "field", query.Get("return"))
		assert.Equal(t, testVersion, query.Get("version"))
		assert.Len(t, query, 4)

		writeJSON(w, http.StatusOK, `{
			"matching_results": 2,
			"results": [{"id": "doc-1", "score": 1.5, "field": "value", "enriched_text": {"sentiment": {"label": "positive"}}}],
			"aggregations": [{"type": "term", "field": "field", "results": [{"key": "value", "matching_results": 2}]}]
		}`)
	})

	opts, err := discovery.NewQueryOptionsBuilder("env-1", "col-1").
		Count(5).
		Offset(5).
		AddReturnField("field").
		Build()
	require.NoError(t, err)

	call, err := svc.Query(opts)
	require.NoError(t, err)

	resp, err := call.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.MatchingResults)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "doc-1", resp.Results[0].ID)
	assert.InDelta(t, 1.5, resp.Results[0].Score, 0)
	assert.Equal(t, "value", resp.Results[0].Field("field").String())
	assert.Equal(t, "positive", resp.Results[0].Field("enriched_text.sentiment.label").String())

	require.Len(t, resp.Aggregations, 1)
	term, ok := resp.Aggregations[0].Aggregation.(*discovery.Term)
	require.True(t, ok)
	assert.Equal(t, "value", term.Results[0].Key)
}

func TestQuery_FullParameters(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "enriched_text.entities.text:IBM", query.Get("filter"))
		assert.Equal(t, "how do I reset", query.Get("natural_language_query"))
		assert.Equal(t, "b,-a", query.Get("sort"))
		assert.Equal(t, "true", query.Get("passages"))
		assert.Equal(t, "title,body", query.Get("passages.fields"))
		assert.Equal(t, "3", query.Get("passages.count"))
		assert.Equal(t, "false", query.Get("highlight"))
		assert.Equal(t, "title", query.Get("deduplicate.field"))
		assert.Equal(t, "true", r.Header.Get("X-Watson-Logging-Opt-Out"))
		assert.False(t, query.Has("query"))

		writeJSON(w, http.StatusOK, `{"matching_results": 0, "passages": [{"document_id": "d", "passage_text": "reset"}]}`)
	})

	opts, err := discovery.NewQueryOptionsBuilder("env-1", "col-1").
		Filter("enriched_text.entities.text:IBM").
		NaturalLanguageQuery("how do I reset").
		AddSort("b").
		AddSort("-a").
		Passages(true).
		AddPassagesField("title").
		AddPassagesField("body").
		PassagesCount(3).
		Highlight(false).
		DeduplicateField("title").
		LoggingOptOut(true).
		Build()
	require.NoError(t, err)

	call, err := svc.Query(opts)
	require.NoError(t, err)

	resp, err := call.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Passages, 1)
	assert.Equal(t, "reset", resp.Passages[0].PassageText)
}

func TestFederatedQuery(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/environments/env-1/query", r.URL.Path)
		assert.Equal(t, "col-1,col-2", r.URL.Query().Get("collection_ids"))
		assert.Equal(t, "text:watson", r.URL.Query().Get("query"))

		writeJSON(w, http.StatusOK, `{"matching_results": 1, "results": [{"id": "d1", "collection_id": "col-2"}]}`)
	})

	opts, err := discovery.NewFederatedQueryOptionsBuilder("env-1", "col-1").
		AddCollectionID("col-2").
		Query("text:watson").
		BuildFederated()
	require.NoError(t, err)

	call, err := svc.FederatedQuery(opts)
	require.NoError(t, err)

	resp, err := call.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "col-2", resp.Results[0].CollectionID)
}

func TestUnauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)

		writeJSON(w, http.StatusUnauthorized, `{"code": 401, "error": "Not Authorized"}`)
	})

	call, err := svc.ListEnvironments(&discovery.ListEnvironmentsOptions{})
	require.NoError(t, err)

	_, err = call.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, watson.IsUnauthorized(err))
	assert.False(t, watson.IsServiceError(err))
	assert.Equal(t, http.StatusUnauthorized, watson.StatusCode(err))

	var responseErr *watson.ServiceResponseError
	require.ErrorAs(t, err, &responseErr)
	assert.Equal(t, "Not Authorized", responseErr.Message)

	require.ErrorIs(t, svc.Ping(context.Background()), watson.ErrUnauthorized)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestAddDocument(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/environments/env-1/collections/col-1/documents", r.URL.Path)
		assert.Equal(t, "cfg-1", r.URL.Query().Get("configuration_id"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		assert.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])

		file, err := reader.NextPart()
		assert.NoError(t, err)
		assert.Equal(t, "file", file.FormName())
		assert.Equal(t, "doc.html", file.FileName())
		assert.Equal(t, "text/html", file.Header.Get("Content-Type"))

		content, err := io.ReadAll(file)
		assert.NoError(t, err)
		assert.Equal(t, "<html>hi</html>", string(content))

		metadata, err := reader.NextPart()
		assert.NoError(t, err)
		assert.Equal(t, "metadata", metadata.FormName())

		content, err = io.ReadAll(metadata)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"author":"me"}`, string(content))

		_, err = reader.NextPart()
		assert.ErrorIs(t, err, io.EOF)

		writeJSON(w, http.StatusAccepted, `{"document_id": "doc-1", "status": "processing"}`)
	})

	opts, err := discovery.NewDocumentOptionsBuilder("env-1", "col-1").
		File(watson.FileFromReader(strings.NewReader("<html>hi</html>"), "doc.html", "text/html")).
		Metadata(`{"author":"me"}`).
		ConfigurationID("cfg-1").
		BuildAdd()
	require.NoError(t, err)

	call, err := svc.AddDocument(opts)
	require.NoError(t, err)

	accepted, err := call.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "doc-1", accepted.DocumentID)
	assert.Equal(t, "processing", accepted.Status)
}

func TestAddDocument_DefaultFilename(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		assert.NoError(t, err)

		part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
		assert.NoError(t, err)
		assert.Equal(t, "filename", part.FileName())
		assert.Equal(t, "application/pdf", part.Header.Get("Content-Type"))

		writeJSON(w, http.StatusAccepted, `{"document_id": "doc-2", "status": "processing"}`)
	})

	call, err := svc.AddDocument(&discovery.AddDocumentOptions{
		EnvironmentID: "env-1",
		CollectionID:  "col-1",
		DocumentContent: discovery.DocumentContent{
			File: watson.FileFromBytes([]byte("%PDF"), "", "application/pdf"),
		},
	})
	require.NoError(t, err)

	_, err = call.Execute(context.Background())
	require.NoError(t, err)
}

func TestUpdateAndDeleteDocument(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/environments/env-1/collections/col-1/documents/doc%201", r.URL.EscapedPath())

		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusAccepted, `{"document_id": "doc 1", "status": "processing"}`)
		case http.MethodGet:
			writeJSON(w, http.StatusOK, `{"document_id": "doc 1", "status": "available", "sha1": "abc"}`)
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, `{"document_id": "doc 1", "status": "deleted"}`)
		}
	})

	update, err := discovery.NewDocumentOptionsBuilder("env-1", "col-1").
		DocumentID("doc 1").
		Metadata(`{"v":2}`).
		BuildUpdate()
	require.NoError(t, err)

	updateCall, err := svc.UpdateDocument(update)
	require.NoError(t, err)

	accepted, err := updateCall.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "processing", accepted.Status)

	ids := &discovery.DocumentOptions{EnvironmentID: "env-1", CollectionID: "col-1", DocumentID: "doc 1"}

	statusCall, err := svc.GetDocumentStatus(ids)
	require.NoError(t, err)

	status, err := statusCall.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", status.SHA1)

	deleteCall, err := svc.DeleteDocument(ids)
	require.NoError(t, err)

	deleted, err := deleteCall.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deleted", deleted.Status)
}

func TestAddDocuments(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if strings.HasSuffix(r.URL.Path, "/col-bad/documents") {
			writeJSON(w, http.StatusNotFound, `{"error": "collection not found"}`)

			return
		}

		writeJSON(w, http.StatusAccepted, `{"document_id": "d", "status": "processing"}`)
	})

	docs := make([]*discovery.AddDocumentOptions, 0, 3)

	for _, collection := range []string{"col-1", "col-bad", "col-2"} {
		opts, err := discovery.NewDocumentOptionsBuilder("env-1", collection).Metadata(`{}`).BuildAdd()
		require.NoError(t, err)

		docs = append(docs, opts)
	}

	results, err := svc.AddDocuments(context.Background(), docs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success())
	assert.True(t, watson.IsNotFound(results[1].Error))
	assert.True(t, results[2].Success())
	assert.Equal(t, int32(3), hits.Load())

	summary := watson.Summarize(results)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	_, err = svc.AddDocuments(context.Background(), []*discovery.AddDocumentOptions{docs[0], {EnvironmentID: "env-1"}}, 1)
	require.ErrorIs(t, err, watson.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "document 1")
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestResourceRoutes(t *testing.T) {
	t.Parallel()

	type seen struct {
		method string
		path   string
		query  string
		body   string
	}

	var (
		mu       sync.Mutex
		requests []seen
	)

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := r.URL.Query()
		query.Del("version")

		mu.Lock()
		requests = append(requests, seen{r.Method, r.URL.Path, query.Encode(), string(body)})
		mu.Unlock()

		writeJSON(w, http.StatusOK, `{}`)
	})

	ctx := context.Background()

	envCall, err := svc.GetEnvironment(&discovery.EnvironmentOptions{EnvironmentID: "env-1"})
	require.NoError(t, err)
	_, err = envCall.Execute(ctx)
	require.NoError(t, err)

	update, err := discovery.NewUpdateEnvironmentOptionsBuilder("env-1").Description("new").Build()
	require.NoError(t, err)
	updateCall, err := svc.UpdateEnvironment(update)
	require.NoError(t, err)
	_, err = updateCall.Execute(ctx)
	require.NoError(t, err)

	config, err := discovery.NewConfigurationOptionsBuilder("env-1", "cfg").
		AddNormalization(discovery.NormalizationOperation{Operation: "remove", SourceField: "x"}).
		BuildCreate()
	require.NoError(t, err)
	configCall, err := svc.CreateConfiguration(config)
	require.NoError(t, err)
	_, err = configCall.Execute(ctx)
	require.NoError(t, err)

	listConfigs, err := svc.ListConfigurations(&discovery.ListConfigurationsOptions{EnvironmentID: "env-1", Name: watson.String("cfg")})
	require.NoError(t, err)
	_, err = listConfigs.Execute(ctx)
	require.NoError(t, err)

	collection, err := discovery.NewCreateCollectionOptionsBuilder("env-1", "docs").Language("en").Build()
	require.NoError(t, err)
	collectionCall, err := svc.CreateCollection(collection)
	require.NoError(t, err)
	_, err = collectionCall.Execute(ctx)
	require.NoError(t, err)

	fieldsCall, err := svc.ListCollectionFields(&discovery.CollectionOptions{EnvironmentID: "env-1", CollectionID: "col-1"})
	require.NoError(t, err)
	_, err = fieldsCall.Execute(ctx)
	require.NoError(t, err)

	allFields, err := svc.ListFields(&discovery.ListFieldsOptions{EnvironmentID: "env-1", CollectionIDs: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = allFields.Execute(ctx)
	require.NoError(t, err)

	deleteCall, err := svc.DeleteCollection(&discovery.CollectionOptions{EnvironmentID: "env-1", CollectionID: "col-1"})
	require.NoError(t, err)
	_, err = deleteCall.Execute(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []seen{
		{http.MethodGet, "/v1/environments/env-1", "", ""},
		{http.MethodPut, "/v1/environments/env-1", "", `{"description":"new"}`},
		{http.MethodPost, "/v1/environments/env-1/configurations", "", `{"name":"cfg","normalizations":[{"operation":"remove","source_field":"x"}]}`},
		{http.MethodGet, "/v1/environments/env-1/configurations", "name=cfg", ""},
		{http.MethodPost, "/v1/environments/env-1/collections", "", `{"name":"docs","language":"en"}`},
		{http.MethodGet, "/v1/environments/env-1/collections/col-1/fields", "", ""},
		{http.MethodGet, "/v1/environments/env-1/fields", "collection_ids=a%2Cb", ""},
		{http.MethodDelete, "/v1/environments/env-1/collections/col-1", "", ""},
	}, requests)
}

func TestValidationHappensBeforeIO(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	svc := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := svc.GetEnvironment(nil)
	require.ErrorIs(t, err, watson.ErrNilOptions)

	_, err = svc.GetCollection(&discovery.CollectionOptions{EnvironmentID: "env-1"})
	require.ErrorIs(t, err, watson.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "collection_id")

	_, err = svc.FederatedQuery(&discovery.FederatedQueryOptions{EnvironmentID: "env-1"})
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	_, err = svc.AddDocument(&discovery.AddDocumentOptions{EnvironmentID: "env-1", CollectionID: "col-1"})
	require.ErrorIs(t, err, watson.ErrInvalidArgument)

	assert.Equal(t, int32(0), hits.Load())
}

func TestEnvironmentsDecoding(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "byod", r.URL.Query().Get("name"))
		writeJSON(w, http.StatusOK, `{"environments": [
			{"environment_id": "system", "name": "Watson System Environment", "read_only": true},
			{"environment_id": "env-1", "name": "byod", "size": 1, "future_field": {"x": 1}}
		]}`)
	})

	call, err := svc.ListEnvironments(&discovery.ListEnvironmentsOptions{Name: watson.String("byod")})
	require.NoError(t, err)

	detailed, err := call.ExecuteWithDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, detailed.StatusCode)
	require.Len(t, detailed.Result.Environments, 2)
	assert.True(t, detailed.Result.Environments[0].ReadOnly)
	assert.Equal(t, int64(1), detailed.Result.Environments[1].Size)

	encoded, err := json.Marshal(detailed.Result.Environments[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"environment_id":"env-1","name":"byod","size":1}`, string(encoded))
}
