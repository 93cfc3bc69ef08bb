// Package discovery is a client for the Discovery v1 service: environments,
// configurations, collections, documents and queries.
package discovery

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// DefaultURL is the endpoint used when the config carries none.
const DefaultURL = "https://gateway.watsonplatform.net/discovery/api"

const serviceName = "discovery"

// Client calls the Discovery service. It is safe for concurrent use.
type Client struct {
	service *client.Service
}

// New creates a Discovery client. The config must carry a version date.
func New(config *watson.Config) (*Client, error) {
	service, err := client.New(client.Info{
		Name:            serviceName,
		APIVersion:      "v1",
		CredentialName:  serviceName,
		DefaultURL:      DefaultURL,
		RequiresVersion: true,
	}, config)
	if err != nil {
		return nil, fmt.Errorf("creating discovery client: %w", err)
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

// Ping lists the environments and reports whether the service answered.
func (c *Client) Ping(ctx context.Context) error {
	call, err := c.ListEnvironments(&ListEnvironmentsOptions{})
	if err != nil {
		return err
	}

	_, err = call.Execute(ctx)
	if err != nil {
		return fmt.Errorf("pinging discovery: %w", err)
	}

	return nil
}
