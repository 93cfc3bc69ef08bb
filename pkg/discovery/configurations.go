package discovery

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// ConfigurationDefinition is the content of a configuration.
type ConfigurationDefinition struct {
	Name        string
	Description *string
	// Conversions is the raw conversions object (pdf, word, html, json_normalizations).
	Conversions    json.RawMessage
	Enrichments    []Enrichment
	Normalizations []NormalizationOperation
}

func (d ConfigurationDefinition) clone() ConfigurationDefinition {
	d.Conversions = slices.Clone(d.Conversions)
	d.Enrichments = slices.Clone(d.Enrichments)
	d.Normalizations = slices.Clone(d.Normalizations)

	return d
}

func (d ConfigurationDefinition) validate() error {
	if d.Name == "" {
		return watson.RequiredArgument("name")
	}

	if len(d.Conversions) > 0 && !json.Valid(d.Conversions) {
		return watson.InvalidArgument("conversions", "must be valid JSON")
	}

	return nil
}

type configurationRequest struct {
	Name           string                   `json:"name"`
	Description    *string                  `json:"description,omitempty"`
	Conversions    json.RawMessage          `json:"conversions,omitempty"`
	Enrichments    []Enrichment             `json:"enrichments,omitempty"`
	Normalizations []NormalizationOperation `json:"normalizations,omitempty"`
}

func (d ConfigurationDefinition) request() configurationRequest {
	return configurationRequest{
		Name:           d.Name,
		Description:    d.Description,
		Conversions:    d.Conversions,
		Enrichments:    d.Enrichments,
		Normalizations: d.Normalizations,
	}
}

// CreateConfigurationOptions are the parameters of CreateConfiguration.
type CreateConfigurationOptions struct {
	EnvironmentID string
	ConfigurationDefinition
}

// Validate checks the required fields.
func (o *CreateConfigurationOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	return o.validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateConfigurationOptions) NewBuilder() *ConfigurationOptionsBuilder {
	return &ConfigurationOptionsBuilder{environmentID: o.EnvironmentID, definition: o.clone()}
}

// UpdateConfigurationOptions are the parameters of UpdateConfiguration. The
// definition replaces the stored one.
type UpdateConfigurationOptions struct {
	EnvironmentID   string
	ConfigurationID string
	ConfigurationDefinition
}

// Validate checks the required fields.
func (o *UpdateConfigurationOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.ConfigurationID == "" {
		return watson.RequiredArgument("configuration_id")
	}

	return o.validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *UpdateConfigurationOptions) NewBuilder() *ConfigurationOptionsBuilder {
	return &ConfigurationOptionsBuilder{
		environmentID:   o.EnvironmentID,
		configurationID: o.ConfigurationID,
		definition:      o.clone(),
	}
}

// ConfigurationOptionsBuilder builds CreateConfigurationOptions and
// UpdateConfigurationOptions.
type ConfigurationOptionsBuilder struct {
	environmentID   string
	configurationID string
	definition      ConfigurationDefinition
}

// NewConfigurationOptionsBuilder starts a builder with the required fields.
func NewConfigurationOptionsBuilder(environmentID, name string) *ConfigurationOptionsBuilder {
	return &ConfigurationOptionsBuilder{
		environmentID: environmentID,
		definition:    ConfigurationDefinition{Name: name},
	}
}

// ConfigurationID sets the configuration to update.
func (b *ConfigurationOptionsBuilder) ConfigurationID(configurationID string) *ConfigurationOptionsBuilder {
	b.configurationID = configurationID

	return b
}

// Name sets the configuration name.
func (b *ConfigurationOptionsBuilder) Name(name string) *ConfigurationOptionsBuilder {
	b.definition.Name = name

	return b
}

// Description sets the configuration description.
func (b *ConfigurationOptionsBuilder) Description(description string) *ConfigurationOptionsBuilder {
	b.definition.Description = &description

	return b
}

// Conversions sets the raw conversions object.
func (b *ConfigurationOptionsBuilder) Conversions(conversions json.RawMessage) *ConfigurationOptionsBuilder {
	b.definition.Conversions = slices.Clone(conversions)

	return b
}

// AddEnrichment appends an enrichment.
func (b *ConfigurationOptionsBuilder) AddEnrichment(enrichment Enrichment) *ConfigurationOptionsBuilder {
	b.definition.Enrichments = append(b.definition.Enrichments, enrichment)

	return b
}

// AddNormalization appends a normalization operation.
func (b *ConfigurationOptionsBuilder) AddNormalization(operation NormalizationOperation) *ConfigurationOptionsBuilder {
	b.definition.Normalizations = append(b.definition.Normalizations, operation)

	return b
}

// BuildCreate validates and returns options for CreateConfiguration.
func (b *ConfigurationOptionsBuilder) BuildCreate() (*CreateConfigurationOptions, error) {
	opts := &CreateConfigurationOptions{EnvironmentID: b.environmentID, ConfigurationDefinition: b.definition.clone()}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// BuildUpdate validates and returns options for UpdateConfiguration.
func (b *ConfigurationOptionsBuilder) BuildUpdate() (*UpdateConfigurationOptions, error) {
	opts := &UpdateConfigurationOptions{
		EnvironmentID:           b.environmentID,
		ConfigurationID:         b.configurationID,
		ConfigurationDefinition: b.definition.clone(),
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// ConfigurationOptions identify one configuration.
type ConfigurationOptions struct {
	EnvironmentID   string
	ConfigurationID string
}

// Validate checks the required fields.
func (o *ConfigurationOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	if o.ConfigurationID == "" {
		return watson.RequiredArgument("configuration_id")
	}

	return nil
}

// ListConfigurationsOptions are the parameters of ListConfigurations.
type ListConfigurationsOptions struct {
	EnvironmentID string
	Name          *string
}

// Validate checks the required fields.
func (o *ListConfigurationsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.EnvironmentID == "" {
		return watson.RequiredArgument("environment_id")
	}

	return nil
}

// CreateConfiguration adds a configuration to an environment.
func (c *Client) CreateConfiguration(opts *CreateConfigurationOptions) (*watson.ServiceCall[Configuration], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Configuration](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      client.Path("/v1/environments/%s/configurations", opts.EnvironmentID),
		Operation: "create_configuration",
		Body:      opts.request(),
	}), nil
}

// GetConfiguration returns one configuration.
func (c *Client) GetConfiguration(opts *ConfigurationOptions) (*watson.ServiceCall[Configuration], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Configuration](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/configurations/%s", opts.EnvironmentID, opts.ConfigurationID),
		Operation: "get_configuration",
	}), nil
}

// ListConfigurations lists the configurations of an environment.
func (c *Client) ListConfigurations(opts *ListConfigurationsOptions) (*watson.ServiceCall[ListConfigurationsResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[ListConfigurationsResponse](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/environments/%s/configurations", opts.EnvironmentID),
		Operation: "list_configurations",
		Query:     client.NewQuery().String("name", opts.Name),
	}), nil
}

// UpdateConfiguration replaces a configuration.
func (c *Client) UpdateConfiguration(opts *UpdateConfigurationOptions) (*watson.ServiceCall[Configuration], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Configuration](c.service, &client.Request{
		Method:    http.MethodPut,
		Path:      client.Path("/v1/environments/%s/configurations/%s", opts.EnvironmentID, opts.ConfigurationID),
		Operation: "update_configuration",
		Body:      opts.request(),
	}), nil
}

// DeleteConfiguration deletes a configuration. Collections using it keep
// working but can no longer be updated.
func (c *Client) DeleteConfiguration(opts *ConfigurationOptions) (*watson.ServiceCall[DeleteConfigurationResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DeleteConfigurationResponse](c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      client.Path("/v1/environments/%s/configurations/%s", opts.EnvironmentID, opts.ConfigurationID),
		Operation: "delete_configuration",
	}), nil
}
