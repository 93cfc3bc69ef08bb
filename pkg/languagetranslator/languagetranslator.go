// Package languagetranslator is a client for the Language Translator v3 service:
// translation, language identification and custom translation models.
package languagetranslator

import (
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	watsonhttp "github.com/fivetwenty-io/watson-go/internal/http"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// DefaultURL is the endpoint used when the config carries none.
const DefaultURL = "https://gateway.watsonplatform.net/language-translator/api"

const serviceName = "language_translator"

// Client calls the Language Translator service. It is safe for concurrent use.
type Client struct {
	service *client.Service
}

// New creates a Language Translator client. The config must carry a version date.
func New(config *watson.Config) (*Client, error) {
	service, err := client.New(client.Info{
		Name:            serviceName,
		APIVersion:      "v3",
		CredentialName:  serviceName,
		DefaultURL:      DefaultURL,
		RequiresVersion: true,
	}, config)
	if err != nil {
		return nil, fmt.Errorf("creating language translator client: %w", err)
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

type translateRequest struct {
	Text    []string `json:"text"`
	ModelID *string  `json:"model_id,omitempty"`
	Source  *string  `json:"source,omitempty"`
	Target  *string  `json:"target,omitempty"`
}

// Translate translates one or more texts.
func (c *Client) Translate(opts *TranslateOptions) (*watson.ServiceCall[TranslationResult], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[TranslationResult](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v3/translate",
		Operation: "translate",
		Body: translateRequest{
			Text:    opts.Text,
			ModelID: opts.ModelID,
			Source:  opts.Source,
			Target:  opts.Target,
		},
	}), nil
}

// Identify identifies the language of a text.
func (c *Client) Identify(opts *IdentifyOptions) (*watson.ServiceCall[IdentifiedLanguages], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[IdentifiedLanguages](c.service, &client.Request{
		Method:      http.MethodPost,
		Path:        "/v3/identify",
		Operation:   "identify",
		RawBody:     []byte(opts.Text),
		ContentType: constants.MediaTypeTextPlain,
	}), nil
}

// ListIdentifiableLanguages lists the languages Identify can recognize.
func (c *Client) ListIdentifiableLanguages() *watson.ServiceCall[IdentifiableLanguages] {
	return client.NewCall[IdentifiableLanguages](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v3/identifiable_languages",
		Operation: "list_identifiable_languages",
	})
}

// ListModels lists the base and custom models.
func (c *Client) ListModels(opts *ListModelsOptions) (*watson.ServiceCall[TranslationModels], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[TranslationModels](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v3/models",
		Operation: "list_models",
		Query: client.NewQuery().
			String("source", opts.Source).
			String("target", opts.Target).
			Bool("default", opts.DefaultModels),
	}), nil
}

// CreateModel trains a custom model from a base model and TMX files.
func (c *Client) CreateModel(opts *CreateModelOptions) (*watson.ServiceCall[TranslationModel], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	var parts []watsonhttp.Part

	if opts.ForcedGlossary != nil {
		parts = append(parts, watsonhttp.FilePart("forced_glossary", opts.ForcedGlossary))
	}

	if opts.ParallelCorpus != nil {
		parts = append(parts, watsonhttp.FilePart("parallel_corpus", opts.ParallelCorpus))
	}

	return client.NewCall[TranslationModel](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v3/models",
		Operation: "create_model",
		Query:     client.NewQuery().Set("base_model_id", opts.BaseModelID).String("name", opts.Name),
		Parts:     parts,
	}), nil
}

// GetModel returns one model.
func (c *Client) GetModel(opts *ModelOptions) (*watson.ServiceCall[TranslationModel], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[TranslationModel](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v3/models/%s", opts.ModelID),
		Operation: "get_model",
	}), nil
}

// DeleteModel deletes a custom model.
func (c *Client) DeleteModel(opts *ModelOptions) (*watson.ServiceCall[DeleteModelResult], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DeleteModelResult](c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      client.Path("/v3/models/%s", opts.ModelID),
		Operation: "delete_model",
	}), nil
}
