// Package glpiclient provides the primary entry point for constructing a
// GLPI REST API client that implements the glpi.Client interface.
//
// It layers configuration, the HTTP transport, and session opening on top of
// the interfaces and types defined in the glpi package. Most applications
// should import glpiclient to build a client, then use the returned
// glpi.Client for items, profiles and sessions.
//
// Quick start
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
//
//	  // Minimal: just an API endpoint (no session yet).
//	  cli, err := glpiclient.New(ctx, &glpi.Config{APIEndpoint: "https://glpi.example.com/apirest.php"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or open a session with a personal API token:
//	  cli, err = glpiclient.New(ctx, &glpi.Config{
//	    APIEndpoint: "https://glpi.example.com/apirest.php",
//	    UserToken:   "q56hqkniwot8wntb3z1qarka5atf365taaa2uyjrn",
//	    AppToken:    "f7g3csp8mgatg5ebc5elnazakw20i9fyev1qopya7",
//	  })
//
//	  // Or with username/password.
//	  cli, err = glpiclient.New(ctx, &glpi.Config{
//	    APIEndpoint: "https://glpi.example.com/apirest.php",
//	    Username:    "glpi",
//	    Password:    "glpi",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  computers := cli.ListItems(ctx, glpi.ItemTypeComputer, glpi.NewQueryOptions().WithRange(0, 9))
//	  if err := computers.Err(); err != nil { log.Fatal(err) }
//	  _ = computers.Value
//	}
//
// A failed login makes New return an error wrapping glpi.ErrLoginFailed and
// the *glpi.APIError or *glpi.TransportError that caused it.
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is gated by
// the environment variable GLPI_DEV_MODE to avoid accidental insecure usage in
// production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithUserToken, and NewWithPassword that wrap New with the appropriate
// configuration.
package glpiclient
