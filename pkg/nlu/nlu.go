// Package nlu is a client for the Natural Language Understanding v1 service,
// which extracts concepts, entities, keywords, categories, emotion, sentiment,
// relations and semantic roles from text, HTML or a public URL.
package nlu

import (
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// DefaultURL is the endpoint used when the config carries none.
const DefaultURL = "https://gateway.watsonplatform.net/natural-language-understanding/api"

const (
	serviceName    = "natural_language_understanding"
	credentialName = "natural-language-understanding"
)

// Client calls the Natural Language Understanding service. It is safe for concurrent use.
type Client struct {
	service *client.Service
}

// New creates a Natural Language Understanding client. The config must carry a version date.
func New(config *watson.Config) (*Client, error) {
	service, err := client.New(client.Info{
		Name:            serviceName,
		APIVersion:      "v1",
		CredentialName:  credentialName,
		DefaultURL:      DefaultURL,
		RequiresVersion: true,
	}, config)
	if err != nil {
		return nil, fmt.Errorf("creating natural language understanding client: %w", err)
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

type analyzeRequest struct {
	Text                *string   `json:"text,omitempty"`
	HTML                *string   `json:"html,omitempty"`
	URL                 *string   `json:"url,omitempty"`
	Features            *Features `json:"features"`
	Clean               *bool     `json:"clean,omitempty"`
	XPath               *string   `json:"xpath,omitempty"`
	FallbackToRaw       *bool     `json:"fallback_to_raw,omitempty"`
	ReturnAnalyzedText  *bool     `json:"return_analyzed_text,omitempty"`
	Language            *string   `json:"language,omitempty"`
	LimitTextCharacters *int64    `json:"limit_text_characters,omitempty"`
}

// Analyze runs the requested features on text, HTML or a public URL.
func (c *Client) Analyze(opts *AnalyzeOptions) (*watson.ServiceCall[AnalysisResults], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[AnalysisResults](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v1/analyze",
		Operation: "analyze",
		Body: analyzeRequest{
			Text:                opts.Text,
			HTML:                opts.HTML,
			URL:                 opts.URL,
			Features:            opts.Features,
			Clean:               opts.Clean,
			XPath:               opts.XPath,
			FallbackToRaw:       opts.FallbackToRaw,
			ReturnAnalyzedText:  opts.ReturnAnalyzedText,
			Language:            opts.Language,
			LimitTextCharacters: opts.LimitTextCharacters,
		},
	}), nil
}

// ListModels lists the custom models deployed to the instance.
func (c *Client) ListModels() *watson.ServiceCall[ListModelsResults] {
	return client.NewCall[ListModelsResults](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v1/models",
		Operation: "list_models",
	})
}

// DeleteModel deletes a custom model.
func (c *Client) DeleteModel(opts *DeleteModelOptions) (*watson.ServiceCall[DeleteModelResults], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[DeleteModelResults](c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      client.Path("/v1/models/%s", opts.ModelID),
		Operation: "delete_model",
	}), nil
}
