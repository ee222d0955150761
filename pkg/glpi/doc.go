// Package glpi provides types, interfaces, and helpers for working with the
// GLPI REST API (apirest.php).
//
// # Overview
//
// The glpi package defines the session state, the request and response
// descriptors, the Outcome result type, the item type enumeration and the
// client interfaces (SessionClient, ProfileClient, ItemsClient, SearchClient,
// FilesClient). A concrete implementation is provided by the glpiclient
// package, which wires configuration, transport, and login. Most consumers
// should import glpiclient to construct a client and then use the interfaces
// exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/glpi/pkg/glpi"
//	  "github.com/fivetwenty-io/glpi/pkg/glpiclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := glpiclient.New(ctx, &glpi.Config{
//	    APIEndpoint: "https://glpi.example.com/apirest.php",
//	    UserToken:   "my-api-token",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  computers := cli.ListItems(ctx, glpi.ItemTypeComputer, glpi.NewQueryOptions().WithRange(0, 49))
//	  if !computers.IsSuccess() { log.Fatal(computers.Err()) }
//	  _ = computers.Value
//	}
//
// # Outcomes
//
// Every API call returns exactly one Outcome: Success with a decoded value,
// an API error when the server answered with a failure (or a success body
// that could not be decoded), or a transport error when no response was
// obtained. Outcome.Err converts failures into *APIError or *TransportError
// for use with errors.As and helpers such as IsNotFound and IsSessionInvalid.
//
// Calls block until their outcome is ready. Async runs a call on its own
// goroutine and delivers the single outcome on a channel.
//
// # Sessions and headers
//
// The client owns a SessionState. Every request carries a Session-Token
// header, empty when no session is open, and an App-Token header while an
// application token is set. ComposeHeaders is the pure function that builds
// these headers.
//
// # Interceptors and metrics
//
// Request and response interceptors observe every call. The package ships
// logging and rate limiting interceptors and PrometheusMetrics, which counts
// calls per endpoint and outcome.
package glpi
