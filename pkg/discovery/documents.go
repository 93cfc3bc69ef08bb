package discovery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	watsonhttp "github.com/fivetwenty-io/watson-go/internal/http"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// defaultFilename names file parts whose source carries no filename.
const defaultFilename = "filename"

// DocumentContent is the payload of an added or updated document: a file,
// a JSON metadata string, or both.
type DocumentContent struct {
	File     *watson.FileSource
	Metadata *string
	// ConfigurationID overrides the collection configuration for this document.
	ConfigurationID *string
}

func (d DocumentContent) validate() error {
	if d.File == nil && d.Metadata == nil {
		return watson.InvalidArgument("file", "or metadata must be set")
	}

	if d.File != nil {
		return d.File.Validate()
	}

	return nil
}

func (d DocumentContent) parts() []watsonhttp.Part {
	var parts []watsonhttp.Part

	if d.File != nil {
		part := watsonhttp.FilePart("file", d.File)
		if part.Filename == "" {
			part.Filename = defaultFilename
		}

		parts = append(parts, part)
	}

	if d.Metadata != nil {
		parts = append(parts, watsonhttp.Part{Name: "metadata", Data: []byte(*d.Metadata)})
	}

	return parts
}

// AddDocumentOptions are the parameters of AddDocument.
type AddDocumentOptions struct {
	EnvironmentID string
	CollectionID  string
	DocumentContent
}

// Validate checks the required fields.
func (o *AddDocumentOptions) Validate() error {
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
func (o *AddDocumentOptions) NewBuilder() *DocumentOptionsBuilder {
	return &DocumentOptionsBuilder{
		environmentID: o.EnvironmentID,
		collectionID:  o.CollectionID,
		content:       o.DocumentContent,
	}
}

// UpdateDocumentOptions are the parameters of UpdateDocument.
type UpdateDocumentOptions struct {
	EnvironmentID string
	CollectionID  string
	DocumentID    string
	DocumentContent
}

// Validate checks the required fields.
func (o *UpdateDocumentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.CollectionID == "" {
		return watson.RequiredArgument("collection_id")
	}

	if o.DocumentID == "" {
		return watson.RequiredArgument("document_id")
	}

	return o.validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *UpdateDocumentOptions) NewBuilder() *DocumentOptionsBuilder {
	return &DocumentOptionsBuilder{
		environmentID: o.EnvironmentID,
		collectionID:  o.CollectionID,
		documentID:    o.DocumentID,
		content:       o.DocumentContent,
	}
}

// DocumentOptionsBuilder builds AddDocumentOptions and UpdateDocumentOptions.
type DocumentOptionsBuilder struct {
	environmentID string
	collectionID  string
	documentID    string
	content       DocumentContent
}

// NewDocumentOptionsBuilder starts a builder for a collection.
func NewDocumentOptionsBuilder(environmentID, collectionID string) *DocumentOptionsBuilder {
	return &DocumentOptionsBuilder{environmentID: environmentID, collectionID: collectionID}
}

// DocumentID sets the document to update.
func (b *DocumentOptionsBuilder) DocumentID(documentID string) *DocumentOptionsBuilder {
	b.documentID = documentID

	return b
}

// File sets the document file.
func (b *DocumentOptionsBuilder) File(file *watson.FileSource) *DocumentOptionsBuilder {
	b.content.File = file

	return b
}

// Metadata sets the metadata JSON string.
func (b *DocumentOptionsBuilder) Metadata(metadata string) *DocumentOptionsBuilder {
	b.content.Metadata = &metadata

	return b
}

// ConfigurationID sets the configuration override.
func (b *DocumentOptionsBuilder) ConfigurationID(configurationID string) *DocumentOptionsBuilder {
	b.content.ConfigurationID = &configurationID

	return b
}

// BuildAdd validates and returns options for AddDocument.
func (b *DocumentOptionsBuilder) BuildAdd() (*AddDocumentOptions, error) {
	opts := &AddDocumentOptions{
		EnvironmentID:   b.environmentID,
		CollectionID:    b.collectionID,
		DocumentContent: b.content,
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// BuildUpdate validates and returns options for UpdateDocument.
func (b *DocumentOptionsBuilder) BuildUpdate() (*UpdateDocumentOptions, error) {
	opts := &UpdateDocumentOptions{
		EnvironmentID:   b.environmentID,
		CollectionID:    b.collectionID,
		DocumentID:      b.documentID,
		DocumentContent: b.content,
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// DocumentOptions identify one document.
type DocumentOptions struct {
	EnvironmentID string
	CollectionID  string
	DocumentID    string
}

// Validate checks the required fields.
func (o *DocumentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.CollectionID == "" {
		return watson.RequiredArgument("collection_id")
	}

	if o.DocumentID == "" {
		return watson.RequiredArgument("document_id")
	}

	return nil
}

// AddDocument uploads a document for ingestion. The file part is sent first,
// followed by the metadata part.
func (c *Client) AddDocument(opts *AddDocumentOptions) (*watson.ServiceCall[DocumentAccepted], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DocumentAccepted](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      client.Path("/v1/environments/%s/collections/%s/documents", opts.EnvironmentID, opts.CollectionID),
		Operation: "add_document",
		Query:     client.NewQuery().String("configuration_id", opts.ConfigurationID),
		Parts:     opts.parts(),
	}), nil
}

// UpdateDocument replaces the content of a document.
func (c *Client) UpdateDocument(opts *UpdateDocumentOptions) (*watson.ServiceCall[DocumentAccepted], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DocumentAccepted](c.service, &client.Request{
		Method: http.MethodPost,
		Path: client.Path("/v1/environments/%s/collections/%s/documents/%s",
			opts.EnvironmentID, opts.CollectionID, opts.DocumentID),
		Operation: "update_document",
		Query:     client.NewQuery().String("configuration_id", opts.ConfigurationID),
		Parts:     opts.parts(),
	}), nil
}

// GetDocumentStatus reports the ingestion state of a document.
func (c *Client) GetDocumentStatus(opts *DocumentOptions) (*watson.ServiceCall[DocumentStatus], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DocumentStatus](c.service, &client.Request{
		Method: http.MethodGet,
		Path: client.Path("/v1/environments/%s/collections/%s/documents/%s",
			opts.EnvironmentID, opts.CollectionID, opts.DocumentID),
		Operation: "get_document_status",
	}), nil
}

// DeleteDocument removes a document from a collection.
func (c *Client) DeleteDocument(opts *DocumentOptions) (*watson.ServiceCall[DeleteDocumentResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DeleteDocumentResponse](c.service, &client.Request{
		Method: http.MethodDelete,
		Path: client.Path("/v1/environments/%s/collections/%s/documents/%s",
			opts.EnvironmentID, opts.CollectionID, opts.DocumentID),
		Operation: "delete_document",
	}), nil
}

// AddDocuments uploads several documents with at most concurrency uploads in
// flight. All options are validated before anything is sent; results are in
// input order.
func (c *Client) AddDocuments(ctx context.Context, docs []*AddDocumentOptions, concurrency int) ([]watson.BatchResult[DocumentAccepted], error) {
	calls := make([]*watson.ServiceCall[DocumentAccepted], 0, len(docs))

	for i, doc := range docs {
		call, err := c.AddDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		calls = append(calls, call)
	}

	return watson.RunBatch(ctx, calls, concurrency), nil
}
