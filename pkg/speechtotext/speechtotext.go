// Package speechtotext is a client for the Speech to Text v1 service:
// synchronous and asynchronous recognition, models, and streaming
// recognition over a WebSocket.
package speechtotext

import (
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// DefaultURL is the endpoint used when the config carries none.
const DefaultURL = "https://stream.watsonplatform.net/speech-to-text/api"

const (
	serviceName    = "speech_to_text"
	credentialName = "speech-to-text"
)

// Client calls the Speech to Text service. It is safe for concurrent use.
type Client struct {
	service *client.Service
}

// New creates a Speech to Text client.
func New(config *watson.Config) (*Client, error) {
	service, err := client.New(client.Info{
		Name:           serviceName,
		APIVersion:     "v1",
		CredentialName: credentialName,
		DefaultURL:     DefaultURL,
	}, config)
	if err != nil {
		return nil, fmt.Errorf("creating speech to text client: %w", err)
	}

	return &Client{service: service}, nil
}

// Endpoint returns the current service endpoint.
func (c *Client) Endpoint() string {
	return c.service.Endpoint()
}

// SetEndpoint changes the endpoint of calls and sessions started afterwards.
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

// ListModels lists the base models.
func (c *Client) ListModels() *watson.ServiceCall[SpeechModels] {
	return client.NewCall[SpeechModels](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v1/models",
		Operation: "list_models",
	})
}

// GetModel describes one base model.
func (c *Client) GetModel(opts *GetModelOptions) (*watson.ServiceCall[SpeechModel], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[SpeechModel](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/models/%s", opts.ModelID),
		Operation: "get_model",
	}), nil
}

// Recognize transcribes audio in a single request.
func (c *Client) Recognize(opts *RecognizeOptions) (*watson.ServiceCall[SpeechRecognitionResults], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	if size := opts.Audio.Size(); size > constants.MaxAudioUploadBytes {
		return nil, watson.InvalidArgument("audio", fmt.Sprintf("is %d bytes, the limit is %d; use CreateJob or RecognizeUsingWebSocket", size, constants.MaxAudioUploadBytes))
	}

	return client.NewCall[SpeechRecognitionResults](c.service, &client.Request{
		Method:      http.MethodPost,
		Path:        "/v1/recognize",
		Operation:   "recognize",
		Query:       opts.query(client.NewQuery()),
		RawFile:     opts.Audio,
		ContentType: opts.MediaType(),
	}), nil
}

// CreateJob submits audio for asynchronous recognition.
func (c *Client) CreateJob(opts *CreateJobOptions) (*watson.ServiceCall[RecognitionJob], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	query := opts.query(client.NewQuery()).
		String("callback_url", opts.CallbackURL).
		List("events", opts.Events).
		String("user_token", opts.UserToken).
		Int("results_ttl", opts.ResultsTTL)

	return client.NewCall[RecognitionJob](c.service, &client.Request{
		Method:      http.MethodPost,
		Path:        "/v1/recognitions",
		Operation:   "create_job",
		Query:       query,
		RawFile:     opts.Audio,
		ContentType: opts.MediaType(),
	}), nil
}

// CheckJobs lists the jobs created in the last week.
func (c *Client) CheckJobs() *watson.ServiceCall[RecognitionJobs] {
	return client.NewCall[RecognitionJobs](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v1/recognitions",
		Operation: "check_jobs",
	})
}

// CheckJob returns the status, and the results once completed, of a job.
func (c *Client) CheckJob(opts *JobOptions) (*watson.ServiceCall[RecognitionJob], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[RecognitionJob](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      client.Path("/v1/recognitions/%s", opts.ID),
		Operation: "check_job",
	}), nil
}

// DeleteJob deletes a job and its results.
func (c *Client) DeleteJob(opts *JobOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      client.Path("/v1/recognitions/%s", opts.ID),
		Operation: "delete_job",
	}), nil
}

// RegisterCallback allowlists a URL for job callbacks.
func (c *Client) RegisterCallback(opts *RegisterCallbackOptions) (*watson.ServiceCall[RegisterStatus], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[RegisterStatus](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v1/register_callback",
		Operation: "register_callback",
		Query: client.NewQuery().
			Set("callback_url", opts.CallbackURL).
			String("user_secret", opts.UserSecret),
	}), nil
}

// UnregisterCallback removes a URL from the allowlist.
func (c *Client) UnregisterCallback(opts *UnregisterCallbackOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v1/unregister_callback",
		Operation: "unregister_callback",
		Query:     client.NewQuery().Set("callback_url", opts.CallbackURL),
	}), nil
}

// ListLanguageModels lists the custom language models the credentials own.
func (c *Client) ListLanguageModels(opts *ListLanguageModelsOptions) (*watson.ServiceCall[LanguageModels], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[LanguageModels](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      "/v1/customizations",
		Operation: "list_language_models",
		Query:     client.NewQuery().String("language", opts.Language),
	}), nil
}
