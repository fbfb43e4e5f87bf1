// Package pbclient provides the main entry point for creating PocketBase API clients
package pbclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// New creates a new PocketBase API client. The base URL is normalised: a
// trailing slash is removed and "https://" is added when no scheme is given.
// The caller's config is not modified.
func New(ctx context.Context, config *pocketbase.Config) (pocketbase.Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrConfigRequired)
	}

	cfg := *config
	cfg.BaseURL = normalizeEndpoint(cfg.BaseURL)

	c, err := client.New(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithEndpoint creates a new unauthenticated client.
func NewWithEndpoint(ctx context.Context, endpoint, locale string) (pocketbase.Client, error) {
	return New(ctx, &pocketbase.Config{
		BaseURL: endpoint,
		Locale:  locale,
	})
}

// NewWithToken creates a new client holding an existing admin token.
func NewWithToken(ctx context.Context, endpoint, token string) (pocketbase.Client, error) {
	return New(ctx, &pocketbase.Config{
		BaseURL:   endpoint,
		Token:     token,
		TokenKind: pocketbase.CredentialAdmin,
	})
}

// NewWithPassword creates a new client and authenticates it as an admin.
func NewWithPassword(ctx context.Context, endpoint, email, password string) (pocketbase.Client, error) {
	c, err := NewWithEndpoint(ctx, endpoint, "")
	if err != nil {
		return nil, err
	}

	_, err = c.Admin().AuthWithPassword(ctx, email, password, nil)
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}

	return c, nil
}

// NewWithRecordPassword creates a new client and authenticates it as a record
// of an auth collection.
func NewWithRecordPassword(ctx context.Context, endpoint, collection, identity, password string) (pocketbase.Client, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyCollectionName)
	}

	c, err := NewWithEndpoint(ctx, endpoint, "")
	if err != nil {
		return nil, err
	}

	_, err = c.Record(collection).AuthWithPassword(ctx, identity, password, nil)
	if err != nil {
		return nil, fmt.Errorf("login to %s: %w", collection, err)
	}

	return c, nil
}

// RecordsAs returns a CRUD service for the records of collection decoded as
// T instead of the generic pocketbase.Record.
func RecordsAs[T any](c pocketbase.Client, collection string) pocketbase.CRUD[T] {
	return client.NewCRUDService[T](c, c.Context(), client.RecordsPath(collection), false)
}
