// Package pbclient provides the primary entry point for constructing a
// PocketBase API client that implements the pocketbase.Client interface.
//
// It layers configuration, the HTTP transport and the middleware chain on top
// of the service interfaces and types defined in the pocketbase package. Most
// applications import pbclient to build a client, then use the returned
// pocketbase.Client to reach the services: Admin(), Collection(),
// Record(name), Health(), Settings() and Logs().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
//	  "github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Minimal: just a base URL and a locale (no auth).
//	  cli, err := pbclient.NewWithEndpoint(ctx, "https://example.pocketbase.io", "en")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or log in as an admin right away:
//	  cli, err = pbclient.NewWithPassword(ctx, "https://example.pocketbase.io",
//	    "admin@example.com", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  posts, err := cli.Record("posts").GetList(ctx,
//	    pocketbase.NewListConfig(1, 50).
//	      WithFilter(`status = "published"`).
//	      WithSort(pocketbase.Desc("created")))
//	  if err != nil { log.Fatal(err) }
//	  _ = posts
//	}
//
// # Typed records
//
// RecordsAs binds the CRUD operations of a collection to a caller type:
//
//	type Post struct {
//	  ID    string `json:"id"`
//	  Title string `json:"title"`
//	}
//
//	posts := pbclient.RecordsAs[Post](cli, "posts")
//	post, err := posts.GetOne(ctx, "abc123", nil)
//
// # Configuration files
//
// LoadConfig reads a YAML file and POCKETBASE_* environment variables into a
// pocketbase.Config:
//
//	base_url: https://example.pocketbase.io
//	locale: en
//	timeout: 10s
//	retry_max: 2
//
// # Helpers
//
// The package also provides the convenience constructors NewWithEndpoint,
// NewWithToken, NewWithPassword and NewWithRecordPassword.
package pbclient
