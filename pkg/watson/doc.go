// Package watson provides the shared building blocks of the Watson service
// clients: configuration, errors, deferred calls, file parameters, caching
// and request interceptors.
//
// # Overview
//
// Each service lives in its own package (discovery, languagetranslator, nlu,
// speechtotext, conceptinsights) and is constructed from a Config. Service
// methods take an options value produced by a builder and return a
// ServiceCall, a deferred handle that performs no I/O until it is executed:
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/watson-go/pkg/languagetranslator"
//	  "github.com/fivetwenty-io/watson-go/pkg/watson"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  svc, err := languagetranslator.New(&watson.Config{
//	    IAMAPIKey: "my-key",
//	    Version:   "2018-05-01",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  opts, err := languagetranslator.NewTranslateOptionsBuilder().
//	    AddText("hello").Source("en").Target("es").Build()
//	  if err != nil { log.Fatal(err) }
//
//	  call, err := svc.Translate(opts)
//	  if err != nil { log.Fatal(err) }
//
//	  result, err := call.Execute(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = result
//	}
//
// # Execution
//
// A ServiceCall can be executed synchronously (Execute, ExecuteWithDetails),
// through a callback (Enqueue) or as a channel (Async). Several calls of the
// same type can be run together with RunBatch.
//
// # Errors
//
// Builders and service methods return errors matching ErrInvalidArgument
// before any request is sent. Failed responses are returned as
// *ServiceResponseError, which matches exactly one error kind (ErrNotFound,
// ErrUnauthorized, ...) through errors.Is. Network failures match ErrTransport.
//
// # Interceptors and caching
//
// InterceptorChain runs hooks around every exchange (logging, request ids,
// rate limiting, circuit breaking, Prometheus metrics). A Cache stores GET
// responses and revalidates them with If-None-Match; memory, NATS JetStream
// KV and Redis backends are provided.
package watson
