package discovery

import (
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// CreateEnvironmentOptions are the parameters of CreateEnvironment.
type CreateEnvironmentOptions struct {
	Name        string
	Description *string
	Size        *int64
}

// Validate checks the required fields.
func (o *CreateEnvironmentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.Name == "" {
		return watson.RequiredArgument("name")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateEnvironmentOptions) NewBuilder() *CreateEnvironmentOptionsBuilder {
	return &CreateEnvironmentOptionsBuilder{opts: *o}
}

// CreateEnvironmentOptionsBuilder builds CreateEnvironmentOptions.
type CreateEnvironmentOptionsBuilder struct {
	opts CreateEnvironmentOptions
}

// NewCreateEnvironmentOptionsBuilder starts a builder with the required name.
func NewCreateEnvironmentOptionsBuilder(name string) *CreateEnvironmentOptionsBuilder {
	return &CreateEnvironmentOptionsBuilder{opts: CreateEnvironmentOptions{Name: name}}
}

// Name sets the environment name.
func (b *CreateEnvironmentOptionsBuilder) Name(name string) *CreateEnvironmentOptionsBuilder {
	b.opts.Name = name

	return b
}

// Description sets the environment description.
func (b *CreateEnvironmentOptionsBuilder) Description(description string) *CreateEnvironmentOptionsBuilder {
	b.opts.Description = &description

	return b
}

// Size sets the environment size plan.
func (b *CreateEnvironmentOptionsBuilder) Size(size int64) *CreateEnvironmentOptionsBuilder {
	b.opts.Size = &size

	return b
}

// Build validates and returns the options.
func (b *CreateEnvironmentOptionsBuilder) Build() (*CreateEnvironmentOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// EnvironmentOptions identify one environment. They are used by
// GetEnvironment and DeleteEnvironment.
type EnvironmentOptions struct {
	EnvironmentID string
}

// Validate checks the required fields.
func (o *EnvironmentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	return nil
}

// NewEnvironmentOptions validates and returns options for environmentID.
func NewEnvironmentOptions(environmentID string) (*EnvironmentOptions, error) {
	opts := &EnvironmentOptions{EnvironmentID: environmentID}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// ListEnvironmentsOptions are the parameters of ListEnvironments.
type ListEnvironmentsOptions struct {
	// Name keeps only environments with this exact name.
	Name *string
}

// Validate checks the options.
func (o *ListEnvironmentsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	return nil
}

// UpdateEnvironmentOptions are the parameters of UpdateEnvironment.
type UpdateEnvironmentOptions struct {
	EnvironmentID string
	Name          *string
	Description   *string
	Size          *int64
}

// Validate checks the required fields.
func (o *UpdateEnvironmentOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *UpdateEnvironmentOptions) NewBuilder() *UpdateEnvironmentOptionsBuilder {
	return &UpdateEnvironmentOptionsBuilder{opts: *o}
}

// UpdateEnvironmentOptionsBuilder builds UpdateEnvironmentOptions.
type UpdateEnvironmentOptionsBuilder struct {
	opts UpdateEnvironmentOptions
}

// NewUpdateEnvironmentOptionsBuilder starts a builder for environmentID.
func NewUpdateEnvironmentOptionsBuilder(environmentID string) *UpdateEnvironmentOptionsBuilder {
	return &UpdateEnvironmentOptionsBuilder{opts: UpdateEnvironmentOptions{EnvironmentID: environmentID}}
}

// Name sets the new name.
func (b *UpdateEnvironmentOptionsBuilder) Name(name string) *UpdateEnvironmentOptionsBuilder {
	b.opts.Name = &name

	return b
}

// Description sets the new description.
func (b *UpdateEnvironmentOptionsBuilder) Description(description string) *UpdateEnvironmentOptionsBuilder {
	b.opts.Description = &description

	return b
}

// Size sets the new size plan.
func (b *UpdateEnvironmentOptionsBuilder) Size(size int64) *UpdateEnvironmentOptionsBuilder {
	b.opts.Size = &size

	return b
}

// Build validates and returns the options.
func (b *UpdateEnvironmentOptionsBuilder) Build() (*UpdateEnvironmentOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

type environmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Size        *int64  `json:"size,omitempty"`
}

// CreateEnvironment creates an environment.
func (c *Client) CreateEnvironment(opts *CreateEnvironmentOptions) (*watson.ServiceCall[Environment], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Environment](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v1/environments",
		Operation: "create_environment",
		Body:      environmentRequest{Name: &opts.Name, Description: opts.Description, Size: opts.Size},
	}), nil
}

// GetEnvironment returns one environment.
func (c *Client) GetEnvironment(opts *EnvironmentOptions) (*watson.ServiceCall[Environment], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Environment](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s", opts.EnvironmentID),
		Operation: "get_environment",
	}), nil
}

// ListEnvironments lists the environments of the instance.
func (c *Client) ListEnvironments(opts *ListEnvironmentsOptions) (*watson.ServiceCall[ListEnvironmentsResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[ListEnvironmentsResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v1/environments",
		Operation: "list_environments",
		Query:     client.NewQuery().String("name", opts.Name),
	}), nil
}

// UpdateEnvironment changes the name, description or size of an environment.
func (c *Client) UpdateEnvironment(opts *UpdateEnvironmentOptions) (*watson.ServiceCall[Environment], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Environment](c.service, &client.Request{
		Method:    http.MethodPut,
		Path:      client.Path("/v1/environments/%s", opts.EnvironmentID),
		Operation: "update_environment",
		Body:      environmentRequest{Name: opts.Name, Description: opts.Description, Size: opts.Size},
	}), nil
}

// DeleteEnvironment deletes an environment and everything in it.
func (c *Client) DeleteEnvironment(opts *EnvironmentOptions) (*watson.ServiceCall[DeleteEnvironmentResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DeleteEnvironmentResponse](c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      client.Path("/v1/environments/%s", opts.EnvironmentID),
		Operation: "delete_environment",
	}), nil
}
