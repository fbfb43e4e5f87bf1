//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URL           string
	AdminEmail    string
	AdminPassword string
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:           os.Getenv("POCKETBASE_URL"),
		AdminEmail:    os.Getenv("POCKETBASE_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("POCKETBASE_ADMIN_PASSWORD"),
	}
}

// SkipIfNoServer skips the test unless a server URL is configured.
func SkipIfNoServer(t *testing.T, config *TestConfig) {
	t.Helper()

	if config.URL == "" {
		t.Skip("Skipping integration test: POCKETBASE_URL not set")
	}
}

// SkipIfNoAdmin skips the test unless admin credentials are configured.
func SkipIfNoAdmin(t *testing.T, config *TestConfig) {
	t.Helper()

	SkipIfNoServer(t, config)

	if config.AdminEmail == "" || config.AdminPassword == "" {
		t.Skip("Skipping integration test: admin credentials not set")
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctx
}

// NewClient builds an anonymous client for the configured server.
func NewClient(t *testing.T, config *TestConfig) pocketbase.Client {
	t.Helper()

	client, err := pbclient.New(testContext(t), &pocketbase.Config{
		BaseURL: config.URL,
	})
	require.NoError(t, err)

	return client
}

// NewAdminClient builds a client logged in as the configured admin.
func NewAdminClient(t *testing.T, config *TestConfig) pocketbase.Client {
	t.Helper()

	client, err := pbclient.NewWithPassword(testContext(t), config.URL, config.AdminEmail, config.AdminPassword)
	require.NoError(t, err)

	return client
}

// UniqueName returns a collection name that will not clash between runs.
func UniqueName(prefix string) string {
	return prefix + "_" + time.Now().Format("20060102150405")
}
