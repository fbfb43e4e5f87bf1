// Package pocketbase provides types, interfaces, and helpers for working with
// the PocketBase REST API.
//
// # Overview
//
// The pocketbase package defines the models (Record, Collection, Admin,
// LogRequest), the service interfaces (AdminsClient, CollectionsClient,
// RecordsClient, ...), the request descriptor and middleware chain, and the
// error taxonomy. A concrete implementation is provided by the pbclient
// package, which wires configuration, transport and credential storage.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := pbclient.NewWithEndpoint(ctx, "https://example.pocketbase.io", "en")
//	  if err != nil { log.Fatal(err) }
//
//	  // First page of the users collection: ?page=1&perPage=30
//	  users, err := cli.Record("users").GetList(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = users
//	}
//
// # Lists
//
// ListConfig expresses page, perPage, sort, filter and expand. Filters are
// sent verbatim. A perPage above the client ceiling fails with
// ErrInvalidConfig before any request is made.
//
//	list, err := cli.Record("posts").GetList(ctx, pocketbase.NewListConfig(1, 50).
//	  WithFilter("published = true").
//	  WithSort(pocketbase.Desc("created")).
//	  WithExpand("author"))
//
// # Authentication
//
// Admin().AuthWithPassword and Record(name).AuthWithPassword store the issued
// token on the shared ClientContext; every later request carries it as a
// bearer token. Logout clears it locally.
//
// # Errors
//
// Every operation returns nil or one of *TransportError, *SerializationError,
// *APIError, ErrUnauthenticated or ErrInvalidConfig (the last two wrapped).
// ErrorKindOf classifies an error; IsNotFound, IsUnauthorized and IsForbidden
// branch on common API statuses.
//
// # Middleware
//
// Requests pass through BaseURLResolver, LocaleInjector and AuthInjector, then
// any middleware from Config.Middleware, and finally the transport. The chain
// never retries.
package pocketbase
