package conceptinsights

import (
	"fmt"
	"maps"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// DocumentOptions identify a document of a corpus.
type DocumentOptions struct {
	CorpusOptions
	Document string
}

// Validate checks the required fields.
func (o *DocumentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if o.Document == "" {
		return watson.RequiredArgument("document")
	}

	return nil
}

func (o *DocumentOptions) path(suffix string) string {
	return o.CorpusOptions.path(client.Path("/documents/%s", o.Document)) + suffix
}

// NewDocumentOptions validates and returns options for a document.
func NewDocumentOptions(accountID, corpus, document string) (*DocumentOptions, error) {
	opts := &DocumentOptions{CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus}, Document: document}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// SaveDocumentOptions are the parameters of CreateDocument and UpdateDocument.
type SaveDocumentOptions struct {
	DocumentOptions
	Label      string
	Parts      []DocumentPart
	UserFields map[string]string
	TTLHours   *int64
}

// Validate checks the required fields.
func (o *SaveDocumentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.DocumentOptions.Validate()
	if err != nil {
		return err
	}

	if o.Label == "" {
		return watson.RequiredArgument("label")
	}

	if len(o.Parts) == 0 {
		return watson.RequiredArgument("parts")
	}

	for i, part := range o.Parts {
		if part.Name == "" {
			return watson.InvalidArgument("parts", fmt.Sprintf("part %d has no name", i))
		}
	}

	if o.TTLHours != nil && *o.TTLHours < 0 {
		return watson.InvalidArgument("ttl_hours", "cannot be negative")
	}

	return nil
}

func (o *SaveDocumentOptions) body() Document {
	doc := Document{Label: o.Label, Parts: o.Parts, UserFields: o.UserFields}
	if o.TTLHours != nil {
		doc.TTLHours = *o.TTLHours
	}

	return doc
}

// NewBuilder returns a builder initialised from the options.
func (o *SaveDocumentOptions) NewBuilder() *SaveDocumentOptionsBuilder {
	return &SaveDocumentOptionsBuilder{opts: o.clone()}
}

func (o *SaveDocumentOptions) clone() SaveDocumentOptions {
	opts := *o
	if o.Parts != nil {
		opts.Parts = append([]DocumentPart(nil), o.Parts...)
	}

	opts.UserFields = maps.Clone(o.UserFields)

	return opts
}

// SaveDocumentOptionsBuilder builds SaveDocumentOptions.
type SaveDocumentOptionsBuilder struct {
	opts SaveDocumentOptions
}

// NewSaveDocumentOptionsBuilder starts a builder for a document labelled label.
func NewSaveDocumentOptionsBuilder(accountID, corpus, document, label string) *SaveDocumentOptionsBuilder {
	return &SaveDocumentOptionsBuilder{opts: SaveDocumentOptions{
		DocumentOptions: DocumentOptions{
			CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus},
			Document:      document,
		},
		Label: label,
	}}
}

// AddPart appends a part. An empty content type means plain text.
func (b *SaveDocumentOptionsBuilder) AddPart(name, contentType, data string) *SaveDocumentOptionsBuilder {
	if contentType == "" {
		contentType = constants.MediaTypeTextPlain
	}

	b.opts.Parts = append(b.opts.Parts, DocumentPart{Name: name, ContentType: contentType, Data: data})

	return b
}

// UserField sets a custom field kept with the document.
func (b *SaveDocumentOptionsBuilder) UserField(name, value string) *SaveDocumentOptionsBuilder {
	if b.opts.UserFields == nil {
		b.opts.UserFields = map[string]string{}
	}

	b.opts.UserFields[name] = value

	return b
}

// TTLHours sets the document lifetime.
func (b *SaveDocumentOptionsBuilder) TTLHours(hours int64) *SaveDocumentOptionsBuilder {
	b.opts.TTLHours = &hours

	return b
}

// Build validates and returns the options.
func (b *SaveDocumentOptionsBuilder) Build() (*SaveDocumentOptions, error) {
	opts := b.opts.clone()

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// ListDocumentsOptions are the parameters of ListDocuments.
type ListDocumentsOptions struct {
	CorpusOptions
	Cursor *int64
	Limit  *int64
	// Status keeps only documents in one processing state.
	Status *string
}

// Validate checks the required fields.
func (o *ListDocumentsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if o.Cursor != nil && *o.Cursor < 0 {
		return watson.InvalidArgument("cursor", "cannot be negative")
	}

	if o.Status != nil {
		switch *o.Status {
		case StatusReady, StatusProcessing, StatusError:
		default:
			return watson.InvalidArgument("status", "must be ready, processing or error")
		}
	}

	return validateLimit(o.Limit)
}

// NewBuilder returns a builder initialised from the options.
func (o *ListDocumentsOptions) NewBuilder() *ListDocumentsOptionsBuilder {
	return &ListDocumentsOptionsBuilder{opts: *o}
}

// ListDocumentsOptionsBuilder builds ListDocumentsOptions.
type ListDocumentsOptionsBuilder struct {
	opts ListDocumentsOptions
}

// NewListDocumentsOptionsBuilder starts a listing of a corpus.
func NewListDocumentsOptionsBuilder(accountID, corpus string) *ListDocumentsOptionsBuilder {
	return &ListDocumentsOptionsBuilder{opts: ListDocumentsOptions{CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus}}}
}

// Cursor sets the index of the first document.
func (b *ListDocumentsOptionsBuilder) Cursor(cursor int64) *ListDocumentsOptionsBuilder {
	b.opts.Cursor = &cursor

	return b
}

// Limit caps the number of documents.
func (b *ListDocumentsOptionsBuilder) Limit(limit int64) *ListDocumentsOptionsBuilder {
	b.opts.Limit = &limit

	return b
}

// Status filters on a processing state.
func (b *ListDocumentsOptionsBuilder) Status(status string) *ListDocumentsOptionsBuilder {
	b.opts.Status = &status

	return b
}

// Build validates and returns the options.
func (b *ListDocumentsOptionsBuilder) Build() (*ListDocumentsOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// SearchCorpusByLabelOptions are the parameters of SearchCorpusByLabel.
type SearchCorpusByLabelOptions struct {
	CorpusOptions
	Query  string
	Prefix *bool
	Limit  *int64
	// Concepts also matches concept labels, not only document labels.
	Concepts *bool
}

// Validate checks the required fields.
func (o *SearchCorpusByLabelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if o.Query == "" {
		return watson.RequiredArgument("query")
	}

	return validateLimit(o.Limit)
}

// NewBuilder returns a builder initialised from the options.
func (o *SearchCorpusByLabelOptions) NewBuilder() *SearchCorpusByLabelOptionsBuilder {
	return &SearchCorpusByLabelOptionsBuilder{opts: *o}
}

// SearchCorpusByLabelOptionsBuilder builds SearchCorpusByLabelOptions.
type SearchCorpusByLabelOptionsBuilder struct {
	opts SearchCorpusByLabelOptions
}

// NewSearchCorpusByLabelOptionsBuilder starts a label search in a corpus.
func NewSearchCorpusByLabelOptionsBuilder(accountID, corpus, query string) *SearchCorpusByLabelOptionsBuilder {
	return &SearchCorpusByLabelOptionsBuilder{opts: SearchCorpusByLabelOptions{
		CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus},
		Query:         query,
	}}
}

// Prefix toggles prefix matching.
func (b *SearchCorpusByLabelOptionsBuilder) Prefix(prefix bool) *SearchCorpusByLabelOptionsBuilder {
	b.opts.Prefix = &prefix

	return b
}

// Limit caps the number of matches.
func (b *SearchCorpusByLabelOptionsBuilder) Limit(limit int64) *SearchCorpusByLabelOptionsBuilder {
	b.opts.Limit = &limit

	return b
}

// Concepts toggles matching concept labels.
func (b *SearchCorpusByLabelOptionsBuilder) Concepts(concepts bool) *SearchCorpusByLabelOptionsBuilder {
	b.opts.Concepts = &concepts

	return b
}

// Build validates and returns the options.
func (b *SearchCorpusByLabelOptionsBuilder) Build() (*SearchCorpusByLabelOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// CorpusRelatedConceptsOptions are the parameters of GetCorpusRelatedConcepts
// and GetDocumentRelatedConcepts. A non-empty Document narrows the search to
// that document.
type CorpusRelatedConceptsOptions struct {
	CorpusOptions
	Document string
	Level    *int64
	Limit    *int64
}

// Validate checks the required fields.
func (o *CorpusRelatedConceptsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	err = validateLevel(o.Level)
	if err != nil {
		return err
	}

	return validateLimit(o.Limit)
}

// NewBuilder returns a builder initialised from the options.
func (o *CorpusRelatedConceptsOptions) NewBuilder() *CorpusRelatedConceptsOptionsBuilder {
	return &CorpusRelatedConceptsOptionsBuilder{opts: *o}
}

// CorpusRelatedConceptsOptionsBuilder builds CorpusRelatedConceptsOptions.
type CorpusRelatedConceptsOptionsBuilder struct {
	opts CorpusRelatedConceptsOptions
}

// NewCorpusRelatedConceptsOptionsBuilder starts a builder for a corpus.
func NewCorpusRelatedConceptsOptionsBuilder(accountID, corpus string) *CorpusRelatedConceptsOptionsBuilder {
	return &CorpusRelatedConceptsOptionsBuilder{opts: CorpusRelatedConceptsOptions{
		CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus},
	}}
}

// Document narrows the search to one document.
func (b *CorpusRelatedConceptsOptionsBuilder) Document(document string) *CorpusRelatedConceptsOptionsBuilder {
	b.opts.Document = document

	return b
}

// Level sets the popularity level.
func (b *CorpusRelatedConceptsOptionsBuilder) Level(level int64) *CorpusRelatedConceptsOptionsBuilder {
	b.opts.Level = &level

	return b
}

// Limit caps the number of concepts.
func (b *CorpusRelatedConceptsOptionsBuilder) Limit(limit int64) *CorpusRelatedConceptsOptionsBuilder {
	b.opts.Limit = &limit

	return b
}

// Build validates and returns the options.
func (b *CorpusRelatedConceptsOptionsBuilder) Build() (*CorpusRelatedConceptsOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// CorpusRelationScoresOptions are the parameters of GetCorpusRelationScores
// and GetDocumentRelationScores. A non-empty Document scores that document
// instead of the whole corpus.
type CorpusRelationScoresOptions struct {
	CorpusOptions
	Document string
	// Concepts are the full ids of the concepts to score against.
	Concepts []string
}

// Validate checks the required fields.
func (o *CorpusRelationScoresOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if len(o.Concepts) == 0 {
		return watson.RequiredArgument("concepts")
	}

	return nil
}

// NewCorpusRelationScoresOptions validates and returns options scoring a
// corpus against the given full concept ids.
func NewCorpusRelationScoresOptions(accountID, corpus string, concepts ...string) (*CorpusRelationScoresOptions, error) {
	opts := &CorpusRelationScoresOptions{
		CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus},
		Concepts:      watson.CloneStrings(concepts),
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// NewDocumentRelationScoresOptions validates and returns options scoring one
// document against the given full concept ids.
func NewDocumentRelationScoresOptions(accountID, corpus, document string, concepts ...string) (*CorpusRelationScoresOptions, error) {
	opts := &CorpusRelationScoresOptions{
		CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus},
		Document:      document,
		Concepts:      watson.CloneStrings(concepts),
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	if document == "" {
		return nil, watson.RequiredArgument("document")
	}

	return opts, nil
}

// UpdateCorpus replaces the access level, users and lifetime of a corpus.
func (c *Client) UpdateCorpus(opts *CreateCorpusOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      opts.path(""),
		Operation: "update_corpus",
		Body: createCorpusRequest{
			Access:   opts.Access,
			Users:    opts.Users,
			TTLHours: opts.TTLHours,
		},
	}), nil
}

// GetCorpusProcessingState reports how many documents of a corpus are ready.
func (c *Client) GetCorpusProcessingState(opts *CorpusOptions) (*watson.ServiceCall[CorpusProcessingState], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[CorpusProcessingState](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/processing_state"),
		Operation: "get_corpus_processing_state",
	}), nil
}

// GetCorpusStats returns the most mentioned concepts of a corpus.
func (c *Client) GetCorpusStats(opts *CorpusOptions) (*watson.ServiceCall[CorpusStats], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[CorpusStats](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/stats"),
		Operation: "get_corpus_stats",
	}), nil
}

// SearchCorpusByLabel finds documents of a corpus by label.
func (c *Client) SearchCorpusByLabel(opts *SearchCorpusByLabelOptions) (*watson.ServiceCall[Matches], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Matches](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/label_search"),
		Operation: "search_corpus_by_label",
		Query: client.NewQuery().
			Set("query", opts.Query).
			Bool("prefix", opts.Prefix).
			Int("limit", opts.Limit).
			Bool("concepts", opts.Concepts),
	}), nil
}

// GetCorpusRelatedConcepts finds concepts related to the documents of a corpus.
func (c *Client) GetCorpusRelatedConcepts(opts *CorpusRelatedConceptsOptions) (*watson.ServiceCall[Concepts], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return c.relatedConcepts(opts, opts.path("/related_concepts"), "get_corpus_related_concepts"), nil
}

// GetDocumentRelatedConcepts finds concepts related to one document.
func (c *Client) GetDocumentRelatedConcepts(opts *CorpusRelatedConceptsOptions) (*watson.ServiceCall[Concepts], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	doc := DocumentOptions{CorpusOptions: opts.CorpusOptions, Document: opts.Document}

	err = doc.Validate()
	if err != nil {
		return nil, err
	}

	return c.relatedConcepts(opts, doc.path("/related_concepts"), "get_document_related_concepts"), nil
}

func (c *Client) relatedConcepts(opts *CorpusRelatedConceptsOptions, path, operation string) *watson.ServiceCall[Concepts] {
	return client.NewCall[Concepts](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      path,
		Operation: operation,
		Query: client.NewQuery().
			Int("level", opts.Level).
			Int("limit", opts.Limit),
	})
}

// GetCorpusRelationScores scores how related a corpus is to each of a set of concepts.
func (c *Client) GetCorpusRelationScores(opts *CorpusRelationScoresOptions) (*watson.ServiceCall[Scores], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return c.relationScores(opts, opts.path("/relation_scores"), "get_corpus_relation_scores"), nil
}

// GetDocumentRelationScores scores how related a document is to each of a set of concepts.
func (c *Client) GetDocumentRelationScores(opts *CorpusRelationScoresOptions) (*watson.ServiceCall[Scores], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	doc := DocumentOptions{CorpusOptions: opts.CorpusOptions, Document: opts.Document}

	err = doc.Validate()
	if err != nil {
		return nil, err
	}

	return c.relationScores(opts, doc.path("/relation_scores"), "get_document_relation_scores"), nil
}

func (c *Client) relationScores(opts *CorpusRelationScoresOptions, path, operation string) *watson.ServiceCall[Scores] {
	return client.NewCall[Scores](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      path,
		Operation: operation,
		Query:     client.NewQuery().JSONList("concepts", opts.Concepts),
	})
}

// ListDocuments lists the document ids of a corpus.
func (c *Client) ListDocuments(opts *ListDocumentsOptions) (*watson.ServiceCall[Documents], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	query := client.NewQuery().
		Int("cursor", opts.Cursor).
		Int("limit", opts.Limit)

	if opts.Status != nil {
		filter, setErr := sjson.Set("", "status", *opts.Status)
		if setErr != nil {
			return nil, fmt.Errorf("encoding document filter: %w", setErr)
		}

		query.Set("query", filter)
	}

	return client.NewCall[Documents](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/documents"),
		Operation: "list_documents",
		Query:     query,
	}), nil
}

// GetDocument returns a document with its parts.
func (c *Client) GetDocument(opts *DocumentOptions) (*watson.ServiceCall[Document], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Document](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path(""),
		Operation: "get_document",
	}), nil
}

// CreateDocument adds a document to a corpus. The service annotates it
// asynchronously; poll GetDocumentProcessingState until it is ready.
func (c *Client) CreateDocument(opts *SaveDocumentOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPut,
		Path:      opts.path(""),
		Operation: "create_document",
		Body:      opts.body(),
	}), nil
}

// UpdateDocument replaces the content of a document.
func (c *Client) UpdateDocument(opts *SaveDocumentOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      opts.path(""),
		Operation: "update_document",
		Body:      opts.body(),
	}), nil
}

// DeleteDocument removes a document from its corpus.
func (c *Client) DeleteDocument(opts *DocumentOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      opts.path(""),
		Operation: "delete_document",
	}), nil
}

// GetDocumentAnnotations returns the concepts found in each part of a document.
func (c *Client) GetDocumentAnnotations(opts *DocumentOptions) (*watson.ServiceCall[DocumentAnnotations], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DocumentAnnotations](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/annotations"),
		Operation: "get_document_annotations",
	}), nil
}

// GetDocumentProcessingState reports whether a document has been annotated.
func (c *Client) GetDocumentProcessingState(opts *DocumentOptions) (*watson.ServiceCall[DocumentProcessingState], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DocumentProcessingState](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/processing_state"),
		Operation: "get_document_processing_state",
	}), nil
}
