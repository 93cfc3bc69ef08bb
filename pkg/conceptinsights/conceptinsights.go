// Package conceptinsights is a client for the Concept Insights v2 service,
// which links text to concepts of a knowledge graph and searches corpora of
// documents by concept.
package conceptinsights

import (
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// DefaultURL is the endpoint used when the config carries none.
const DefaultURL = "https://gateway-s.watsonplatform.net/concept-insights-beta/api"

const (
	serviceName    = "concept_insights"
	credentialName = "concept-insights"
)

// Client calls the Concept Insights service. It is safe for concurrent use.
type Client struct {
	service *client.Service
}

// New creates a Concept Insights client.
func New(config *watson.Config) (*Client, error) {
	service, err := client.New(client.Info{
		Name:           serviceName,
		APIVersion:     "v2",
		CredentialName: credentialName,
		DefaultURL:     DefaultURL,
	}, config)
	if err != nil {
		return nil, fmt.Errorf("creating concept insights client: %w", err)
	}

	return &Client{service: service}, nil
}

// Endpoint returns the current service endpoint.
func (c *Client) Endpoint() string {
	return c.service.Endpoint()
}

// SetEndpoint changes the endpoint of calls built afterwards.
func (c *Client) SetEndpoint(endpoint string) error {
	return c.service.SetEndpoint(endpoint)
}

// SetUsernameAndPassword switches to basic credentials.
func (c *Client) SetUsernameAndPassword(username, password string) error {
	return c.service.SetUsernameAndPassword(username, password)
}

// SetIAMAPIKey switches to IAM API key authentication.
func (c *Client) SetIAMAPIKey(apiKey, iamURL string) error {
	return c.service.SetIAMAPIKey(apiKey, iamURL)
}

// SetIAMAccessToken switches to a user-managed access token.
func (c *Client) SetIAMAccessToken(token string) error {
	return c.service.SetIAMAccessToken(token)
}

// SetSkipAuthentication toggles sending requests without credentials.
func (c *Client) SetSkipAuthentication(skip bool) error {
	return c.service.SetSkipAuthentication(skip)
}

// SetDefaultHeaders replaces the headers sent with every call.
func (c *Client) SetDefaultHeaders(headers map[string]string) {
	c.service.SetDefaultHeaders(headers)
}

// GetAccountsInfo lists the accounts the credentials can use.
func (c *Client) GetAccountsInfo() *watson.ServiceCall[Accounts] {
	return client.NewCall[Accounts](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v2/accounts",
		Operation: "get_accounts_info",
	})
}

// ListGraphs lists the available graphs.
func (c *Client) ListGraphs() *watson.ServiceCall[Graphs] {
	return client.NewCall[Graphs](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v2/graphs",
		Operation: "list_graphs",
	})
}

// SearchGraphConceptByLabel finds concepts of a graph by label.
func (c *Client) SearchGraphConceptByLabel(opts *SearchGraphConceptByLabelOptions) (*watson.ServiceCall[Matches], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Matches](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/label_search"),
		Operation: "search_graph_concept_by_label",
		Query: client.NewQuery().
			Set("query", opts.Query).
			Bool("prefix", opts.Prefix).
			Int("limit", opts.Limit),
	}), nil
}

// GetGraphRelatedConcepts finds concepts related to a single concept or to a
// set of concepts.
func (c *Client) GetGraphRelatedConcepts(opts *RelatedConceptsOptions) (*watson.ServiceCall[Concepts], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	path := opts.path("/related_concepts")
	if opts.ConceptID != nil {
		path = conceptPath(opts.Graph, *opts.ConceptID, "/related_concepts")
	}

	return client.NewCall[Concepts](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      path,
		Operation: "get_graph_related_concepts",
		Query: client.NewQuery().
			JSONList("concepts", opts.Concepts).
			Int("level", opts.Level).
			Int("limit", opts.Limit),
	}), nil
}

// AnnotateText finds the concepts of a graph mentioned in plain text.
func (c *Client) AnnotateText(opts *AnnotateTextOptions) (*watson.ServiceCall[Annotations], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Annotations](c.service, &client.Request{
		Method:      http.MethodPost,
		Path:        opts.path("/annotate_text"),
		Operation:   "annotate_text",
		RawBody:     []byte(opts.Text),
		ContentType: constants.MediaTypeTextPlain,
	}), nil
}

// GetConcept returns the metadata of a concept.
func (c *Client) GetConcept(opts *ConceptOptions) (*watson.ServiceCall[ConceptMetadata], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[ConceptMetadata](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      conceptPath(opts.Graph, opts.Concept, ""),
		Operation: "get_concept",
	}), nil
}

// GetGraphRelationScores scores how related a concept is to each of a set of concepts.
func (c *Client) GetGraphRelationScores(opts *RelationScoresOptions) (*watson.ServiceCall[Scores], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Scores](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      conceptPath(opts.Graph, opts.Concept, "/relation_scores"),
		Operation: "get_graph_relation_scores",
		Query:     client.NewQuery().JSONList("concepts", opts.Concepts),
	}), nil
}

// ListCorpora lists the corpora of every account.
func (c *Client) ListCorpora() *watson.ServiceCall[Corpora] {
	return client.NewCall[Corpora](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v2/corpora",
		Operation: "list_corpora",
	})
}

// GetCorpora lists the corpora of one account.
func (c *Client) GetCorpora(opts *AccountOptions) (*watson.ServiceCall[Corpora], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Corpora](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v2/corpora/%s", opts.AccountID),
		Operation: "get_corpora",
	}), nil
}

// GetCorpus returns a corpus.
func (c *Client) GetCorpus(opts *CorpusOptions) (*watson.ServiceCall[Corpus], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Corpus](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path(""),
		Operation: "get_corpus",
	}), nil
}

type createCorpusRequest struct {
	Access   *string      `json:"access,omitempty"`
	Users    []CorpusUser `json:"users,omitempty"`
	TTLHours *int64       `json:"ttl_hours,omitempty"`
}

// CreateCorpus creates a corpus.
func (c *Client) CreateCorpus(opts *CreateCorpusOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPut,
		Path:      opts.path(""),
		Operation: "create_corpus",
		Body: createCorpusRequest{
			Access:   opts.Access,
			Users:    opts.Users,
			TTLHours: opts.TTLHours,
		},
	}), nil
}

// DeleteCorpus deletes a corpus and its documents.
func (c *Client) DeleteCorpus(opts *CorpusOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      opts.path(""),
		Operation: "delete_corpus",
	}), nil
}

// ConceptualSearch ranks the documents of a corpus by relevance to a set of concepts.
func (c *Client) ConceptualSearch(opts *ConceptualSearchOptions) (*watson.ServiceCall[QueryConcepts], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[QueryConcepts](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/conceptual_search"),
		Operation: "conceptual_search",
		Query: client.NewQuery().
			JSONList("ids", opts.IDs).
			Int("cursor", opts.Cursor).
			Int("limit", opts.Limit),
	}), nil
}

func conceptPath(graph Graph, concept, suffix string) string {
	return client.Path("/v2/graphs/%s/%s/concepts/%s", graph.AccountID, graph.Name, concept) + suffix
}
