package client_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *pocketbase.Config
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "missing base URL", config: &pocketbase.Config{}, wantErr: true},
		{name: "relative base URL", config: &pocketbase.Config{BaseURL: "/api"}, wantErr: true},
		{name: "base URL with query", config: &pocketbase.Config{BaseURL: "http://localhost:8090?x=1"}, wantErr: true},
		{name: "negative retry", config: &pocketbase.Config{BaseURL: "http://localhost:8090", RetryMax: -1}, wantErr: true},
		{name: "unknown token kind", config: &pocketbase.Config{BaseURL: "http://localhost:8090", TokenKind: 7}, wantErr: true},
		{name: "minimal", config: &pocketbase.Config{BaseURL: "http://localhost:8090"}},
		{
			name: "full",
			config: &pocketbase.Config{
				BaseURL:      "https://example.pocketbase.io/",
				Locale:       "en",
				Token:        "token",
				HTTPTimeout:  5 * time.Second,
				UserAgent:    "test/1.0",
				RetryMax:     2,
				RetryWaitMin: time.Millisecond,
				RetryWaitMax: time.Second,
				MaxPerPage:   100,
				RateLimit:    10,
				RateBurst:    5,
				Debug:        true,
				Logger:       pocketbase.NoopLogger{},
				Headers:      map[string]string{"X-Tenant": "acme"},
				Storage:      pocketbase.NewMemoryStorage(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := client.New(context.Background(), tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pocketbase.IsInvalidConfig(err), "got %v", err)
				assert.Nil(t, c)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NotNil(t, c.Admin())
			assert.NotNil(t, c.Collection())
			assert.NotNil(t, c.Record("posts"))
			assert.NotNil(t, c.Health())
			assert.NotNil(t, c.Settings())
			assert.NotNil(t, c.Logs())
		})
	}
}

func TestClient_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ pocketbase.Client = (*client.Client)(nil)
}

func TestClient_InitialToken(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"page":1,"perPage":30,"totalItems":0,"items":[]}`))
	c := newTestClient(t, server.URL, withToken("config-token"))

	cred, ok := c.Context().Credential()
	require.True(t, ok)
	assert.Equal(t, pocketbase.CredentialAdmin, cred.Kind)

	_, err := c.Admin().GetList(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer config-token", server.Last(t).Header.Get("Authorization"))
}

func TestClient_RecordListScenario(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"page":1,"perPage":30,"totalItems":0,"totalPages":0,"items":[]}`))
	c := newTestClient(t, server.URL, func(config *pocketbase.Config) {
		config.Locale = "en"
	})

	list, err := c.Record("users").GetList(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	last := server.Last(t)
	assert.Equal(t, http.MethodGet, last.Method)
	assert.Equal(t, "/api/collections/users/records", last.Path)
	assert.Equal(t, "page=1&perPage=30", last.RawQuery)
	assert.Equal(t, "en", last.Header.Get("Accept-Language"))
	assert.Equal(t, "application/json", last.Header.Get("Accept"))
	assert.Empty(t, last.Header.Get("Authorization"))
}

func TestClient_BaseURLWithPath(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"code":200,"message":"API is healthy."}`))
	c := newTestClient(t, server.URL+"/pb/")

	_, err := c.Health().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/pb/api/health", server.Last(t).Path)
}

func TestClient_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"code":200,"message":"ok"}`))

	var seen *pocketbase.Request

	c := newTestClient(t, server.URL, withToken("T0"), func(config *pocketbase.Config) {
		config.Locale = "de"
		config.Headers = map[string]string{"X-Tenant": "acme"}
		config.Middleware = []pocketbase.Middleware{
			pocketbase.MiddlewareFunc(func(ctx context.Context, req *pocketbase.Request, next pocketbase.Handler) (*pocketbase.Response, error) {
				seen = req.Clone()
				req.Headers.Set("X-Trace", "1")

				return next(ctx, req)
			}),
		}
	})

	_, err := c.Health().Check(context.Background())
	require.NoError(t, err)

	// User middlewares run after the base URL, locale and auth injectors.
	require.NotNil(t, seen)
	assert.Equal(t, server.URL+"/api/health", seen.URL)
	assert.Equal(t, "de", seen.Headers.Get("Accept-Language"))
	assert.Equal(t, "Bearer T0", seen.Headers.Get("Authorization"))
	assert.Equal(t, "acme", seen.Headers.Get("X-Tenant"))

	last := server.Last(t)
	assert.Equal(t, "1", last.Header.Get("X-Trace"))
}

func TestClient_SendDoesNotMutateRequest(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
	c := newTestClient(t, server.URL, withToken("T0"), func(config *pocketbase.Config) {
		config.Locale = "en"
	})

	req := pocketbase.NewRequest(http.MethodGet, "/api/health")

	_, err := c.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, req.URL)
	assert.Empty(t, req.Headers)
}

func TestClient_SendErrors(t *testing.T) {
	t.Parallel()

	t.Run("api error payload", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, respondJSON(http.StatusBadRequest, `{"code":400,"message":"bad filter","data":{}}`))
		c := newTestClient(t, server.URL)

		_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/collections/posts/records"))
		require.Error(t, err)

		apiErr, ok := pocketbase.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, 400, apiErr.Code)
		assert.Equal(t, "bad filter", apiErr.Message)
		assert.Empty(t, apiErr.Data)
		assert.Equal(t, pocketbase.KindAPI, pocketbase.ErrorKindOf(err))
	})

	t.Run("non json error body", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
			_, _ = writer.Write([]byte("upstream unavailable\n"))
		})
		c := newTestClient(t, server.URL)

		_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"))

		apiErr, ok := pocketbase.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, apiErr.Code)
		assert.Equal(t, "upstream unavailable", apiErr.Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
		url := server.URL
		server.Close()

		c := newTestClient(t, url)

		_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"))
		require.Error(t, err)

		var transportErr *pocketbase.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.MethodGet, transportErr.Op)
		assert.Equal(t, url+"/api/health", transportErr.URL)
		assert.Equal(t, pocketbase.KindTransport, pocketbase.ErrorKindOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
		c := newTestClient(t, server.URL)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.Send(ctx, pocketbase.NewRequest(http.MethodGet, "/api/health"))
		require.Error(t, err)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, pocketbase.KindTransport, pocketbase.ErrorKindOf(err))
	})

	t.Run("absolute path rejected", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
		c := newTestClient(t, server.URL)

		_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "https://elsewhere.example/api"))
		require.Error(t, err)
		assert.True(t, pocketbase.IsInvalidConfig(err))
		assert.Equal(t, 0, server.Hits())
	})
}

func TestClient_LogoutThenAuthRequired(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"page":1,"perPage":30,"totalItems":0,"items":[]}`))
	c := newTestClient(t, server.URL, withToken("T0"))

	c.Logout()
	assert.False(t, c.Context().IsAuthenticated())

	_, err := c.Admin().GetList(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pocketbase.ErrUnauthenticated))
	assert.Equal(t, pocketbase.KindUnauthenticated, pocketbase.ErrorKindOf(err))

	_, err = c.Settings().GetAll(context.Background())
	require.ErrorIs(t, err, pocketbase.ErrUnauthenticated)

	err = c.Collection().Import(context.Background(), nil, false)
	require.ErrorIs(t, err, pocketbase.ErrUnauthenticated)

	_, err = c.Logs().GetStats(context.Background(), "")
	require.ErrorIs(t, err, pocketbase.ErrUnauthenticated)

	assert.Equal(t, 0, server.Hits())

	// Record endpoints are governed by server-side rules and still go out.
	_, err = c.Record("posts").GetList(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, server.Hits())
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
	logger := &recordingLogger{}
	c := newTestClient(t, server.URL, func(config *pocketbase.Config) {
		config.Debug = true
		config.Logger = logger
	})

	_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"))
	require.NoError(t, err)

	joined := strings.Join(logger.messages(), "|")
	assert.Contains(t, joined, "API Request")
	assert.Contains(t, joined, "API Response")
	assert.Contains(t, joined, "HTTP Request")
}

func TestClient_StorageRestore(t *testing.T) {
	t.Parallel()

	storage := pocketbase.NewMemoryStorage()
	require.NoError(t, storage.Save(pocketbase.Credential{Token: "stored", Kind: pocketbase.CredentialRecord}))

	server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
	c := newTestClient(t, server.URL, func(config *pocketbase.Config) {
		config.Storage = storage
	})

	_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored", server.Last(t).Header.Get("Authorization"))

	c.Logout()

	stored, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{}`))
	c := newTestClient(t, server.URL, func(config *pocketbase.Config) {
		config.RateLimit = 0.001
		config.RateBurst = 1
	})

	_, err := c.Send(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Send(ctx, pocketbase.NewRequest(http.MethodGet, "/api/health"))
	require.Error(t, err)
	assert.Equal(t, pocketbase.KindTransport, pocketbase.ErrorKindOf(err))
	assert.Equal(t, 1, server.Hits())
}
