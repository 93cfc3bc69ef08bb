package watson

import (
	"context"
	"net/http"
	"sync"
)

// Empty is the result type of calls whose response carries no body.
type Empty struct{}

// DetailedResponse holds a decoded result together with the HTTP metadata.
type DetailedResponse[T any] struct {
	Result     *T
	StatusCode int
	Headers    http.Header
}

// Result is delivered by Async.
type Result[T any] struct {
	Value *T
	Err   error
}

// Callback receives the outcome of an enqueued call.
type Callback[T any] interface {
	OnResponse(result *T)
	OnFailure(err error)
}

// DetailedCallback receives the outcome of an enqueued call with HTTP metadata.
type DetailedCallback[T any] interface {
	OnResponse(response *DetailedResponse[T])
	OnFailure(err error)
}

// CallbackFuncs adapts two functions to Callback. Nil functions are skipped.
type CallbackFuncs[T any] struct {
	Response func(result *T)
	Failure  func(err error)
}

// OnResponse implements Callback.
func (c CallbackFuncs[T]) OnResponse(result *T) {
	if c.Response != nil {
		c.Response(result)
	}
}

// OnFailure implements Callback.
func (c CallbackFuncs[T]) OnFailure(err error) {
	if c.Failure != nil {
		c.Failure(err)
	}
}

// Executor performs one HTTP exchange with the extra headers attached.
type Executor[T any] func(ctx context.Context, headers http.Header) (*DetailedResponse[T], error)

// ServiceCall is a deferred handle on a single service request. Nothing is
// sent until one of the execution methods is called.
//
// Callbacks registered through Enqueue run on a goroutine owned by the call,
// not on the caller's goroutine. Independent calls give no ordering guarantee.
type ServiceCall[T any] struct {
	exec    Executor[T]
	mu      sync.Mutex
	headers http.Header
}

// NewServiceCall creates a deferred call around an executor.
func NewServiceCall[T any](exec Executor[T]) *ServiceCall[T] {
	return &ServiceCall[T]{
		exec:    exec,
		headers: make(http.Header),
	}
}

// AddHeader adds a header to this call only.
func (c *ServiceCall[T]) AddHeader(name, value string) *ServiceCall[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.headers.Add(name, value)

	return c
}

// Execute sends the request and blocks until the result is decoded.
func (c *ServiceCall[T]) Execute(ctx context.Context) (*T, error) {
	resp, err := c.ExecuteWithDetails(ctx)
	if err != nil {
		return nil, err
	}

	return resp.Result, nil
}

// ExecuteWithDetails sends the request and returns the result with its status and headers.
func (c *ServiceCall[T]) ExecuteWithDetails(ctx context.Context) (*DetailedResponse[T], error) {
	c.mu.Lock()
	headers := c.headers.Clone()
	c.mu.Unlock()

	return c.exec(ctx, headers)
}

// Enqueue runs the call on a new goroutine and reports the outcome to callback.
// A nil callback is a no-op and nothing is sent.
func (c *ServiceCall[T]) Enqueue(ctx context.Context, callback Callback[T]) {
	if callback == nil {
		return
	}

	go func() {
		result, err := c.Execute(ctx)
		if err != nil {
			callback.OnFailure(err)

			return
		}

		callback.OnResponse(result)
	}()
}

// EnqueueWithDetails is Enqueue with access to the HTTP metadata.
func (c *ServiceCall[T]) EnqueueWithDetails(ctx context.Context, callback DetailedCallback[T]) {
	if callback == nil {
		return
	}

	go func() {
		resp, err := c.ExecuteWithDetails(ctx)
		if err != nil {
			callback.OnFailure(err)

			return
		}

		callback.OnResponse(resp)
	}()
}

// Async runs the call on a new goroutine. The returned channel yields exactly
// one Result and is then closed.
func (c *ServiceCall[T]) Async(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], 1)

	go func() {
		defer close(out)

		value, err := c.Execute(ctx)
		out <- Result[T]{Value: value, Err: err}
	}()

	return out
}
