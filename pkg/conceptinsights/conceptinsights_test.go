package conceptinsights_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/conceptinsights"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *conceptinsights.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := conceptinsights.New(&watson.Config{APIEndpoint: server.URL, SkipAuthentication: true})
	require.NoError(t, err)

	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	svc, err := conceptinsights.New(&watson.Config{SkipAuthentication: true, DisableCredentialLookup: true})
	require.NoError(t, err)
	assert.Equal(t, conceptinsights.DefaultURL, svc.Endpoint())

	require.NoError(t, svc.SetEndpoint("https://example.com/api/"))
	assert.Equal(t, "https://example.com/api", svc.Endpoint())
}

func TestAccountsAndGraphs(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v2/accounts":
			assert.Contains(t, r.Header.Get("X-IBMCloud-SDK-Analytics"), "operation_id=get_accounts_info")
			_, _ = w.Write([]byte(`{"accounts":[{"account_id":"acct1"}]}`))
		case "/v2/graphs":
			_, _ = w.Write([]byte(`{"graphs":["/graphs/wikipedia/en-20120601"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	accounts, err := svc.GetAccountsInfo().Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []conceptinsights.Account{{AccountID: "acct1"}}, accounts.Accounts)

	graphs, err := svc.ListGraphs().Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/graphs/wikipedia/en-20120601"}, graphs.Graphs)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestGraphOperations(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		query := r.URL.Query()

		switch r.URL.Path {
		case "/v2/graphs/wikipedia/en-20120601/label_search":
			assert.Equal(t, "ibm", query.Get("query"))
			assert.Equal(t, "true", query.Get("prefix"))
			assert.Equal(t, "3", query.Get("limit"))
			_, _ = w.Write([]byte(`{"matches":[{"id":"/graphs/wikipedia/en-20120601/concepts/IBM","label":"IBM"}]}`))
		case "/v2/graphs/wikipedia/en-20120601/related_concepts":
			assert.Equal(t, `["/graphs/wikipedia/en-20120601/concepts/IBM","/graphs/wikipedia/en-20120601/concepts/Watson"]`, query.Get("concepts"))
			assert.Equal(t, "1", query.Get("level"))
			_, _ = w.Write([]byte(`{"concepts":[{"concept":{"id":"c","label":"Cloud computing"},"score":0.8}]}`))
		case "/v2/graphs/wikipedia/en-20120601/concepts/IBM Watson/related_concepts":
			assert.Empty(t, query.Get("concepts"))
			_, _ = w.Write([]byte(`{"concepts":[]}`))
		case "/v2/graphs/wikipedia/en-20120601/annotate_text":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, "IBM announced a new Watson service", string(body))

			_, _ = w.Write([]byte(`{"annotations":[{"concept":{"id":"c","label":"IBM"},"score":0.99,"text_index":[0,3]}]}`))
		case "/v2/graphs/wikipedia/en-20120601/concepts/IBM":
			_, _ = w.Write([]byte(`{"id":"c","label":"IBM","abstract":"A company","ontology":["Company"]}`))
		case "/v2/graphs/wikipedia/en-20120601/concepts/IBM/relation_scores":
			assert.Equal(t, `["/graphs/wikipedia/en-20120601/concepts/Watson"]`, query.Get("concepts"))
			_, _ = w.Write([]byte(`{"scores":[{"concept":"/graphs/wikipedia/en-20120601/concepts/Watson","score":0.7}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	graph := conceptinsights.Wikipedia

	searchOpts, err := conceptinsights.NewSearchGraphConceptByLabelOptionsBuilder(graph, "ibm").Prefix(true).Limit(3).Build()
	require.NoError(t, err)

	searchCall, err := svc.SearchGraphConceptByLabel(searchOpts)
	require.NoError(t, err)

	matches, err := searchCall.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "IBM", matches.Matches[0].Label)

	relatedOpts, err := conceptinsights.NewRelatedConceptsOptionsBuilder(graph).
		AddConcept(graph.ConceptURI("IBM")).
		AddConcept(graph.ConceptURI("Watson")).
		Level(1).
		Build()
	require.NoError(t, err)

	relatedCall, err := svc.GetGraphRelatedConcepts(relatedOpts)
	require.NoError(t, err)

	related, err := relatedCall.Execute(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, related.Concepts[0].Score, 1e-9)

	singleOpts, err := conceptinsights.NewRelatedConceptsOptionsBuilder(graph).ConceptID("IBM Watson").Build()
	require.NoError(t, err)

	singleCall, err := svc.GetGraphRelatedConcepts(singleOpts)
	require.NoError(t, err)

	_, err = singleCall.Execute(ctx)
	require.NoError(t, err)

	annotateOpts, err := conceptinsights.NewAnnotateTextOptions(graph, "IBM announced a new Watson service")
	require.NoError(t, err)

	annotateCall, err := svc.AnnotateText(annotateOpts)
	require.NoError(t, err)

	annotations, err := annotateCall.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, annotations.Annotations, 1)
	assert.Equal(t, watson.TextSpan{Start: 0, End: 3}, annotations.Annotations[0].TextIndex)

	conceptOpts, err := conceptinsights.NewConceptOptions(graph, "IBM")
	require.NoError(t, err)

	conceptCall, err := svc.GetConcept(conceptOpts)
	require.NoError(t, err)

	concept, err := conceptCall.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Company"}, concept.Ontology)

	scoresOpts, err := conceptinsights.NewRelationScoresOptions(graph, "IBM", graph.ConceptURI("Watson"))
	require.NoError(t, err)

	scoresCall, err := svc.GetGraphRelationScores(scoresOpts)
	require.NoError(t, err)

	scores, err := scoresCall.Execute(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, scores.Scores[0].Score, 1e-9)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCorpusOperations(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/v2/corpora":
			_, _ = w.Write([]byte(`{"corpora":[{"id":"/corpora/public/TEDTalks","access":"public"}]}`))
		case r.URL.Path == "/v2/corpora/acct1":
			_, _ = w.Write([]byte(`{"corpora":[]}`))
		case r.URL.Path == "/v2/corpora/acct1/docs" && r.Method == http.MethodPut:
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"access":"private","users":[{"uid":"u1","permission":"ReadWrite"}],"ttl_hours":24}`, string(body))
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/v2/corpora/acct1/docs" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"id":"/corpora/acct1/docs","access":"private","ttl_hours":24}`))
		case r.URL.Path == "/v2/corpora/acct1/docs" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/v2/corpora/public/TEDTalks/conceptual_search":
			query := r.URL.Query()
			assert.Equal(t, `["/graphs/wikipedia/en-20120601/concepts/IBM"]`, query.Get("ids"))
			assert.Equal(t, "10", query.Get("cursor"))
			assert.Equal(t, "5", query.Get("limit"))
			_, _ = w.Write([]byte(`{
				"query_concepts": [{"id": "/graphs/wikipedia/en-20120601/concepts/IBM", "label": "IBM"}],
				"results": [{"id": "/corpora/public/TEDTalks/documents/1", "label": "talk", "score": 0.9,
					"explanation_tags": [{"concept": {"id": "c", "label": "IBM"}, "score": 0.5, "parent_parts_index": 0, "text_index": [4, 7]}]}]
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	corpora, err := svc.ListCorpora().Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, conceptinsights.AccessPublic, corpora.Corpora[0].Access)

	accountCall, err := svc.GetCorpora(&conceptinsights.AccountOptions{AccountID: "acct1"})
	require.NoError(t, err)

	_, err = accountCall.Execute(ctx)
	require.NoError(t, err)

	createOpts, err := conceptinsights.NewCreateCorpusOptionsBuilder("acct1", "docs").
		Access(conceptinsights.AccessPrivate).
		AddUser("u1", "ReadWrite").
		TTLHours(24).
		Build()
	require.NoError(t, err)

	createCall, err := svc.CreateCorpus(createOpts)
	require.NoError(t, err)

	_, err = createCall.Execute(ctx)
	require.NoError(t, err)

	corpusOpts, err := conceptinsights.NewCorpusOptions("acct1", "docs")
	require.NoError(t, err)

	getCall, err := svc.GetCorpus(corpusOpts)
	require.NoError(t, err)

	corpus, err := getCall.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(24), corpus.TTLHours)

	deleteCall, err := svc.DeleteCorpus(corpusOpts)
	require.NoError(t, err)

	_, err = deleteCall.Execute(ctx)
	require.NoError(t, err)

	searchOpts, err := conceptinsights.NewConceptualSearchOptionsBuilder(
		conceptinsights.PublicAccount, conceptinsights.TEDTalksCorpus,
		conceptinsights.Wikipedia.ConceptURI("IBM"),
	).Cursor(10).Limit(5).Build()
	require.NoError(t, err)

	searchCall, err := svc.ConceptualSearch(searchOpts)
	require.NoError(t, err)

	results, err := searchCall.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results.Results, 1)
	assert.Equal(t, watson.TextSpan{Start: 4, End: 7}, results.Results[0].ExplanationTags[0].TextIndex)
	assert.Equal(t, "IBM", results.QueryConcepts[0].Label)
}

func TestServiceError(t *testing.T) {
	t.Parallel()

	svc := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"corpus not found","code":404}`))
	})

	opts, err := conceptinsights.NewCorpusOptions("acct1", "missing")
	require.NoError(t, err)

	call, err := svc.GetCorpus(opts)
	require.NoError(t, err)

	_, err = call.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, watson.IsNotFound(err))
	assert.Equal(t, "corpus not found (status 404)", err.Error())
}

func TestOptions_Validation(t *testing.T) {
	t.Parallel()

	graph := conceptinsights.Wikipedia

	tests := []struct {
		name    string
		build   func() error
		message string
	}{
		{"related without concepts", func() error {
			_, err := conceptinsights.NewRelatedConceptsOptionsBuilder(graph).Build()

			return err
		}, "concept_id must be set"},
		{"related with both", func() error {
			_, err := conceptinsights.NewRelatedConceptsOptionsBuilder(graph).AddConcept("a").ConceptID("b").Build()

			return err
		}, "mutually exclusive"},
		{"related level", func() error {
			_, err := conceptinsights.NewRelatedConceptsOptionsBuilder(graph).ConceptID("b").Level(4).Build()

			return err
		}, "level"},
		{"search without graph", func() error {
			_, err := conceptinsights.NewSearchGraphConceptByLabelOptionsBuilder(conceptinsights.Graph{}, "ibm").Build()

			return err
		}, "account_id"},
		{"search limit", func() error {
			_, err := conceptinsights.NewSearchGraphConceptByLabelOptionsBuilder(graph, "ibm").Limit(0).Build()

			return err
		}, "limit"},
		{"annotate empty", func() error {
			_, err := conceptinsights.NewAnnotateTextOptions(graph, "")

			return err
		}, "text"},
		{"scores without concepts", func() error {
			_, err := conceptinsights.NewRelationScoresOptions(graph, "IBM")

			return err
		}, "concepts"},
		{"corpus access", func() error {
			_, err := conceptinsights.NewCreateCorpusOptionsBuilder("a", "c").Access("shared").Build()

			return err
		}, "access"},
		{"search without ids", func() error {
			_, err := conceptinsights.NewConceptualSearchOptionsBuilder("a", "c").Build()

			return err
		}, "ids"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.build()
			require.ErrorIs(t, err, watson.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	svc, err := conceptinsights.New(&watson.Config{SkipAuthentication: true, DisableCredentialLookup: true})
	require.NoError(t, err)

	_, err = svc.GetCorpus(nil)
	require.ErrorIs(t, err, watson.ErrNilOptions)
}

func TestRelatedConceptsOptions_RoundTrip(t *testing.T) {
	t.Parallel()

	opts, err := conceptinsights.NewRelatedConceptsOptionsBuilder(conceptinsights.Wikipedia).
		AddConcept("a").
		Limit(2).
		Build()
	require.NoError(t, err)

	rebuilt, err := opts.NewBuilder().AddConcept("b").Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, opts.Concepts)
	assert.Equal(t, []string{"a", "b"}, rebuilt.Concepts)

	again, err := opts.NewBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(opts, again))
}
