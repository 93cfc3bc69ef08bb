package discovery

import (
	"net/http"
	"strconv"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

const headerLoggingOptOut = "X-Watson-Logging-Opt-Out"

// QueryParameters are the search parameters shared by Query and FederatedQuery.
type QueryParameters struct {
	Filter               *string
	Query                *string
	NaturalLanguageQuery *string
	Aggregation          *string
	Count                *int64
	Offset               *int64
	// Return lists the fields to return, in order.
	Return []string
	// Sort lists the sort fields; prefix a field with '-' for descending order.
	Sort               []string
	Passages           *bool
	PassagesFields     []string
	PassagesCount      *int64
	PassagesCharacters *int64
	Highlight          *bool
	Deduplicate        *bool
	DeduplicateField   *string
	Similar            *bool
	SimilarDocumentIDs []string
	SimilarFields      []string
	Bias               *string
	LoggingOptOut      *bool
}

func (p QueryParameters) clone() QueryParameters {
	p.Return = watson.CloneStrings(p.Return)
	p.Sort = watson.CloneStrings(p.Sort)
	p.PassagesFields = watson.CloneStrings(p.PassagesFields)
	p.SimilarDocumentIDs = watson.CloneStrings(p.SimilarDocumentIDs)
	p.SimilarFields = watson.CloneStrings(p.SimilarFields)

	return p
}

func (p QueryParameters) validate() error {
	if p.Query != nil && p.NaturalLanguageQuery != nil {
		return watson.InvalidArgument("query", "cannot be combined with natural_language_query")
	}

	if p.Count != nil && *p.Count < 0 {
		return watson.InvalidArgument("count", "cannot be negative")
	}

	if p.Offset != nil && *p.Offset < 0 {
		return watson.InvalidArgument("offset", "cannot be negative")
	}

	return nil
}

func (p QueryParameters) query() *client.Query {
	return client.NewQuery().
		String("filter", p.Filter).
		String("query", p.Query).
		String("natural_language_query", p.NaturalLanguageQuery).
		String("aggregation", p.Aggregation).
		Int("count", p.Count).
		Int("offset", p.Offset).
		List("return", p.Return).
		List("sort", p.Sort).
		Bool("passages", p.Passages).
		List("passages.fields", p.PassagesFields).
		Int("passages.count", p.PassagesCount).
		Int("passages.characters", p.PassagesCharacters).
		Bool("highlight", p.Highlight).
		Bool("deduplicate", p.Deduplicate).
		String("deduplicate.field", p.DeduplicateField).
		Bool("similar", p.Similar).
		List("similar.document_ids", p.SimilarDocumentIDs).
		List("similar.fields", p.SimilarFields).
		String("bias", p.Bias)
}

func (p QueryParameters) headers() map[string]string {
	if p.LoggingOptOut == nil {
		return nil
	}

	return map[string]string{headerLoggingOptOut: strconv.FormatBool(*p.LoggingOptOut)}
}

// QueryOptions are the parameters of Query.
type QueryOptions struct {
	EnvironmentID string
	CollectionID  string
	QueryParameters
}

// Validate checks the required fields.
func (o *QueryOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.CollectionID == "" {
		return watson.RequiredArgument("collection_id")
	}

	return o.validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *QueryOptions) NewBuilder() *QueryOptionsBuilder {
	b := NewQueryOptionsBuilder(o.EnvironmentID, o.CollectionID)
	b.params = o.clone()

	return b
}

// FederatedQueryOptions are the parameters of FederatedQuery.
type FederatedQueryOptions struct {
	EnvironmentID string
	CollectionIDs []string
	QueryParameters
}

// Validate checks the required fields.
func (o *FederatedQueryOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if len(o.CollectionIDs) == 0 {
		return watson.RequiredArgument("collection_ids")
	}

	return o.validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *FederatedQueryOptions) NewBuilder() *QueryOptionsBuilder {
	b := NewFederatedQueryOptionsBuilder(o.EnvironmentID, o.CollectionIDs...)
	b.params = o.clone()

	return b
}

// QueryOptionsBuilder builds QueryOptions and FederatedQueryOptions.
type QueryOptionsBuilder struct {
	environmentID string
	collectionID  string
	collectionIDs []string
	params        QueryParameters
}

// NewQueryOptionsBuilder starts a builder for a query on one collection.
func NewQueryOptionsBuilder(environmentID, collectionID string) *QueryOptionsBuilder {
	return &QueryOptionsBuilder{environmentID: environmentID, collectionID: collectionID}
}

// NewFederatedQueryOptionsBuilder starts a builder for a query across collections.
func NewFederatedQueryOptionsBuilder(environmentID string, collectionIDs ...string) *QueryOptionsBuilder {
	return &QueryOptionsBuilder{environmentID: environmentID, collectionIDs: watson.CloneStrings(collectionIDs)}
}

// AddCollectionID adds a collection to a federated query.
func (b *QueryOptionsBuilder) AddCollectionID(collectionID string) *QueryOptionsBuilder {
	b.collectionIDs = append(b.collectionIDs, collectionID)

	return b
}

// Filter sets a filter in the query language; it does not affect relevancy.
func (b *QueryOptionsBuilder) Filter(filter string) *QueryOptionsBuilder {
	b.params.Filter = &filter

	return b
}

// Query sets a query in the query language.
func (b *QueryOptionsBuilder) Query(query string) *QueryOptionsBuilder {
	b.params.Query = &query

	return b
}

// NaturalLanguageQuery sets a natural language query.
func (b *QueryOptionsBuilder) NaturalLanguageQuery(query string) *QueryOptionsBuilder {
	b.params.NaturalLanguageQuery = &query

	return b
}

// Aggregation sets an aggregation expression.
func (b *QueryOptionsBuilder) Aggregation(aggregation string) *QueryOptionsBuilder {
	b.params.Aggregation = &aggregation

	return b
}

// Count sets the number of results.
func (b *QueryOptionsBuilder) Count(count int64) *QueryOptionsBuilder {
	b.params.Count = &count

	return b
}

// Offset sets the number of results to skip.
func (b *QueryOptionsBuilder) Offset(offset int64) *QueryOptionsBuilder {
	b.params.Offset = &offset

	return b
}

// AddReturnField adds a field to return.
func (b *QueryOptionsBuilder) AddReturnField(field string) *QueryOptionsBuilder {
	b.params.Return = append(b.params.Return, field)

	return b
}

// AddSort adds a sort field.
func (b *QueryOptionsBuilder) AddSort(field string) *QueryOptionsBuilder {
	b.params.Sort = append(b.params.Sort, field)

	return b
}

// Passages toggles passage retrieval.
func (b *QueryOptionsBuilder) Passages(passages bool) *QueryOptionsBuilder {
	b.params.Passages = &passages

	return b
}

// AddPassagesField adds a field passages are extracted from.
func (b *QueryOptionsBuilder) AddPassagesField(field string) *QueryOptionsBuilder {
	b.params.PassagesFields = append(b.params.PassagesFields, field)

	return b
}

// PassagesCount sets the maximum number of passages.
func (b *QueryOptionsBuilder) PassagesCount(count int64) *QueryOptionsBuilder {
	b.params.PassagesCount = &count

	return b
}

// PassagesCharacters sets the approximate passage length.
func (b *QueryOptionsBuilder) PassagesCharacters(characters int64) *QueryOptionsBuilder {
	b.params.PassagesCharacters = &characters

	return b
}

// Highlight toggles highlighting of matches.
func (b *QueryOptionsBuilder) Highlight(highlight bool) *QueryOptionsBuilder {
	b.params.Highlight = &highlight

	return b
}

// Deduplicate toggles removal of duplicate results.
func (b *QueryOptionsBuilder) Deduplicate(deduplicate bool) *QueryOptionsBuilder {
	b.params.Deduplicate = &deduplicate

	return b
}

// DeduplicateField sets the field compared when removing duplicates.
func (b *QueryOptionsBuilder) DeduplicateField(field string) *QueryOptionsBuilder {
	b.params.DeduplicateField = &field

	return b
}

// Similar toggles similar document search.
func (b *QueryOptionsBuilder) Similar(similar bool) *QueryOptionsBuilder {
	b.params.Similar = &similar

	return b
}

// AddSimilarDocumentID adds a document to find similar documents for.
func (b *QueryOptionsBuilder) AddSimilarDocumentID(documentID string) *QueryOptionsBuilder {
	b.params.SimilarDocumentIDs = append(b.params.SimilarDocumentIDs, documentID)

	return b
}

// AddSimilarField adds a field compared in similar document search.
func (b *QueryOptionsBuilder) AddSimilarField(field string) *QueryOptionsBuilder {
	b.params.SimilarFields = append(b.params.SimilarFields, field)

	return b
}

// Bias sets the field whose higher values are favoured.
func (b *QueryOptionsBuilder) Bias(bias string) *QueryOptionsBuilder {
	b.params.Bias = &bias

	return b
}

// LoggingOptOut asks the service not to log the query.
func (b *QueryOptionsBuilder) LoggingOptOut(optOut bool) *QueryOptionsBuilder {
	b.params.LoggingOptOut = &optOut

	return b
}

// Build validates and returns options for Query.
func (b *QueryOptionsBuilder) Build() (*QueryOptions, error) {
	opts := &QueryOptions{
		EnvironmentID:   b.environmentID,
		CollectionID:    b.collectionID,
		QueryParameters: b.params.clone(),
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// BuildFederated validates and returns options for FederatedQuery.
func (b *QueryOptionsBuilder) BuildFederated() (*FederatedQueryOptions, error) {
	opts := &FederatedQueryOptions{
		EnvironmentID:   b.environmentID,
		CollectionIDs:   watson.CloneStrings(b.collectionIDs),
		QueryParameters: b.params.clone(),
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// Query searches one collection.
func (c *Client) Query(opts *QueryOptions) (*watson.ServiceCall[QueryResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[QueryResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/collections/%s/query", opts.EnvironmentID, opts.CollectionID),
		Operation: "query",
		Query:     opts.query(),
		Headers:   opts.headers(),
	}), nil
}

// FederatedQuery searches several collections of an environment.
func (c *Client) FederatedQuery(opts *FederatedQueryOptions) (*watson.ServiceCall[QueryResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[QueryResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/query", opts.EnvironmentID),
		Operation: "federated_query",
		Query:     opts.query().List("collection_ids", opts.CollectionIDs),
		Headers:   opts.headers(),
	}), nil
}
