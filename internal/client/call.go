package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	watsonhttp "github.com/fivetwenty-io/watson-go/internal/http"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Request describes one service operation.
type Request struct {
	Method    string
	Path      string
	Operation string
	Query     *Query

	// Body is encoded as JSON.
	Body interface{}
	// RawBody or RawFile is sent as-is with ContentType.
	RawBody     []byte
	RawFile     *watson.FileSource
	ContentType string
	// Parts are sent as multipart/form-data.
	Parts []watsonhttp.Part

	Accept  string
	Headers map[string]string
}

// Decoder turns a response body into a result.
type Decoder[T any] func(body []byte) (*T, error)

// JSONDecoder decodes a JSON body. An empty body yields the zero value.
func JSONDecoder[T any](body []byte) (*T, error) {
	result := new(T)
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}

	err := json.Unmarshal(body, result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// NewCall builds a deferred call that decodes the response as JSON.
func NewCall[T any](s *Service, req *Request) *watson.ServiceCall[T] {
	return NewCallWithDecoder(s, req, JSONDecoder[T])
}

// NewEmptyCall builds a deferred call whose response body is ignored.
func NewEmptyCall(s *Service, req *Request) *watson.ServiceCall[watson.Empty] {
	return NewCallWithDecoder(s, req, func([]byte) (*watson.Empty, error) {
		return &watson.Empty{}, nil
	})
}

// NewCallWithDecoder builds a deferred call. The endpoint, credentials and
// default headers are captured now; the request is sent on each execution.
func NewCallWithDecoder[T any](s *Service, req *Request, decode Decoder[T]) *watson.ServiceCall[T] {
	target := s.Target()

	query := url.Values{}
	if req.Query != nil {
		query = req.Query.Values()
	}

	if target.Version != "" && query.Get(constants.QueryVersion) == "" {
		query.Set(constants.QueryVersion, target.Version)
	}

	headers := target.Headers
	if headers == nil {
		headers = make(map[string]string)
	}

	headers[constants.HeaderSDKAnalytics] = s.AnalyticsHeader(req.Operation)

	for k, v := range req.Headers {
		headers[k] = v
	}

	return watson.NewServiceCall(func(ctx context.Context, extra http.Header) (*watson.DetailedResponse[T], error) {
		httpReq := &watsonhttp.Request{
			Method:        req.Method,
			Path:          req.Path,
			Query:         query,
			Body:          req.Body,
			ContentType:   req.ContentType,
			Parts:         req.Parts,
			Headers:       headers,
			ExtraHeaders:  extra,
			Accept:        req.Accept,
			Operation:     s.info.Name + "." + req.Operation,
			BaseURL:       target.Endpoint,
			Authenticator: target.Authenticator,
		}

		switch {
		case req.RawFile != nil:
			body, err := req.RawFile.Open()
			if err != nil {
				return nil, err
			}

			defer func() { _ = body.Close() }()

			httpReq.RawBody = body
		case req.RawBody != nil:
			httpReq.RawBody = bytes.NewReader(req.RawBody)
		}

		resp, err := s.http.Do(ctx, httpReq)
		if err != nil {
			return nil, err
		}

		result, err := decode(resp.Body)
		if err != nil {
			return nil, &watson.ServiceResponseError{
				StatusCode: resp.StatusCode,
				Message:    "failed to decode response",
				Body:       resp.Body,
				Headers:    resp.Headers,
				Err:        err,
			}
		}

		return &watson.DetailedResponse[T]{
			Result:     result,
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
		}, nil
	})
}
