package discovery

import (
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// CreateCollectionOptions are the parameters of CreateCollection.
type CreateCollectionOptions struct {
	EnvironmentID   string
	Name            string
	Description     *string
	ConfigurationID *string
	// Language is the language of the documents, e.g. "en".
	Language *string
}

// Validate checks the required fields.
func (o *CreateCollectionOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.Name == "" {
		return watson.RequiredArgument("name")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateCollectionOptions) NewBuilder() *CreateCollectionOptionsBuilder {
	return &CreateCollectionOptionsBuilder{opts: *o}
}

// CreateCollectionOptionsBuilder builds CreateCollectionOptions.
type CreateCollectionOptionsBuilder struct {
	opts CreateCollectionOptions
}

// NewCreateCollectionOptionsBuilder starts a builder with the required fields.
func NewCreateCollectionOptionsBuilder(environmentID, name string) *CreateCollectionOptionsBuilder {
	return &CreateCollectionOptionsBuilder{opts: CreateCollectionOptions{EnvironmentID: environmentID, Name: name}}
}

// Name sets the collection name.
func (b *CreateCollectionOptionsBuilder) Name(name string) *CreateCollectionOptionsBuilder {
	b.opts.Name = name

	return b
}

// Description sets the collection description.
func (b *CreateCollectionOptionsBuilder) Description(description string) *CreateCollectionOptionsBuilder {
	b.opts.Description = &description

	return b
}

// ConfigurationID sets the configuration applied to ingested documents.
func (b *CreateCollectionOptionsBuilder) ConfigurationID(configurationID string) *CreateCollectionOptionsBuilder {
	b.opts.ConfigurationID = &configurationID

	return b
}

// Language sets the document language.
func (b *CreateCollectionOptionsBuilder) Language(language string) *CreateCollectionOptionsBuilder {
	b.opts.Language = &language

	return b
}

// Build validates and returns the options.
func (b *CreateCollectionOptionsBuilder) Build() (*CreateCollectionOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// UpdateCollectionOptions are the parameters of UpdateCollection.
type UpdateCollectionOptions struct {
	EnvironmentID   string
	CollectionID    string
	Name            string
	Description     *string
	ConfigurationID *string
}

// Validate checks the required fields.
func (o *UpdateCollectionOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.CollectionID == "" {
		return watson.RequiredArgument("collection_id")
	}

	if o.Name == "" {
		return watson.RequiredArgument("name")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *UpdateCollectionOptions) NewBuilder() *UpdateCollectionOptionsBuilder {
	return &UpdateCollectionOptionsBuilder{opts: *o}
}

// UpdateCollectionOptionsBuilder builds UpdateCollectionOptions.
type UpdateCollectionOptionsBuilder struct {
	opts UpdateCollectionOptions
}

// NewUpdateCollectionOptionsBuilder starts a builder with the required fields.
func NewUpdateCollectionOptionsBuilder(environmentID, collectionID, name string) *UpdateCollectionOptionsBuilder {
	return &UpdateCollectionOptionsBuilder{opts: UpdateCollectionOptions{
		EnvironmentID: environmentID,
		CollectionID:  collectionID,
		Name:          name,
	}}
}

// Description sets the new description.
func (b *UpdateCollectionOptionsBuilder) Description(description string) *UpdateCollectionOptionsBuilder {
	b.opts.Description = &description

	return b
}

// ConfigurationID sets the new configuration.
func (b *UpdateCollectionOptionsBuilder) ConfigurationID(configurationID string) *UpdateCollectionOptionsBuilder {
	b.opts.ConfigurationID = &configurationID

	return b
}

// Build validates and returns the options.
func (b *UpdateCollectionOptionsBuilder) Build() (*UpdateCollectionOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// CollectionOptions identify one collection. They are used by GetCollection,
// DeleteCollection and ListCollectionFields.
type CollectionOptions struct {
	EnvironmentID string
	CollectionID  string
}

// Validate checks the required fields.
func (o *CollectionOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.CollectionID == "" {
		return watson.RequiredArgument("collection_id")
	}

	return nil
}

// ListCollectionsOptions are the parameters of ListCollections.
type ListCollectionsOptions struct {
	EnvironmentID string
	Name          *string
}

// Validate checks the required fields.
func (o *ListCollectionsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	return nil
}

// ListFieldsOptions are the parameters of ListFields.
type ListFieldsOptions struct {
	EnvironmentID string
	CollectionIDs []string
}

// Validate checks the required fields.
func (o *ListFieldsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if len(o.CollectionIDs) == 0 {
		return watson.RequiredArgument("collection_ids")
	}

	return nil
}

type collectionRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	ConfigurationID *string `json:"configuration_id,omitempty"`
	Language        *string `json:"language,omitempty"`
}

// CreateCollection creates a collection in an environment.
func (c *Client) CreateCollection(opts *CreateCollectionOptions) (*watson.ServiceCall[Collection], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Collection](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      client.Path("/v1/environments/%s/collections", opts.EnvironmentID),
		Operation: "create_collection",
		Body: collectionRequest{
			Name:            opts.Name,
			Description:     opts.Description,
			ConfigurationID: opts.ConfigurationID,
			Language:        opts.Language,
		},
	}), nil
}

// GetCollection returns one collection.
func (c *Client) GetCollection(opts *CollectionOptions) (*watson.ServiceCall[Collection], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Collection](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/collections/%s", opts.EnvironmentID, opts.CollectionID),
		Operation: "get_collection",
	}), nil
}

// ListCollections lists the collections of an environment.
func (c *Client) ListCollections(opts *ListCollectionsOptions) (*watson.ServiceCall[ListCollectionsResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[ListCollectionsResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/collections", opts.EnvironmentID),
		Operation: "list_collections",
		Query:     client.NewQuery().String("name", opts.Name),
	}), nil
}

// UpdateCollection changes the name, description or configuration of a collection.
func (c *Client) UpdateCollection(opts *UpdateCollectionOptions) (*watson.ServiceCall[Collection], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Collection](c.service, &client.Request{
		Method:    http.MethodPut,
		Path:      client.Path("/v1/environments/%s/collections/%s", opts.EnvironmentID, opts.CollectionID),
		Operation: "update_collection",
		Body: collectionRequest{
			Name:            opts.Name,
			Description:     opts.Description,
			ConfigurationID: opts.ConfigurationID,
		},
	}), nil
}

// DeleteCollection deletes a collection and its documents.
func (c *Client) DeleteCollection(opts *CollectionOptions) (*watson.ServiceCall[DeleteCollectionResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DeleteCollectionResponse](c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      client.Path("/v1/environments/%s/collections/%s", opts.EnvironmentID, opts.CollectionID),
		Operation: "delete_collection",
	}), nil
}

// ListCollectionFields lists the indexed fields of a collection.
func (c *Client) ListCollectionFields(opts *CollectionOptions) (*watson.ServiceCall[ListCollectionFieldsResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[ListCollectionFieldsResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/collections/%s/fields", opts.EnvironmentID, opts.CollectionID),
		Operation: "list_collection_fields",
	}), nil
}

// ListFields lists the fields of several collections of an environment.
func (c *Client) ListFields(opts *ListFieldsOptions) (*watson.ServiceCall[ListCollectionFieldsResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[ListCollectionFieldsResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/fields", opts.EnvironmentID),
		Operation: "list_fields",
		Query:     client.NewQuery().List("collection_ids", opts.CollectionIDs),
	}), nil
}
