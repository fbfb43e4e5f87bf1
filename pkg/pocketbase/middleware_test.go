package pocketbase_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

func okTerminal(_ context.Context, _ *pocketbase.Request) (*pocketbase.Response, error) {
	return &pocketbase.Response{StatusCode: http.StatusOK}, nil
}

func recordingMiddleware(name string, trace *[]string) pocketbase.Middleware {
	return pocketbase.MiddlewareFunc(func(ctx context.Context, req *pocketbase.Request, next pocketbase.Handler) (*pocketbase.Response, error) {
		*trace = append(*trace, name+" in")
		resp, err := next(ctx, req)
		*trace = append(*trace, name+" out")

		return resp, err
	})
}

func newContext(t *testing.T, locale string) *pocketbase.ClientContext {
	t.Helper()

	cctx, err := pocketbase.NewClientContext("http://localhost:8090", locale)
	require.NoError(t, err)

	return cctx
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var trace []string

	chain := pocketbase.NewChain(
		recordingMiddleware("first", &trace),
		nil,
		recordingMiddleware("second", &trace),
		recordingMiddleware("third", &trace),
	)
	assert.Equal(t, 3, chain.Len())

	_, err := chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"),
		func(ctx context.Context, req *pocketbase.Request) (*pocketbase.Response, error) {
			trace = append(trace, "terminal")

			return okTerminal(ctx, req)
		})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"first in", "second in", "third in",
		"terminal",
		"third out", "second out", "first out",
	}, trace)
}

func TestChain_ShortCircuit(t *testing.T) {
	t.Parallel()

	called := false
	chain := pocketbase.NewChain(pocketbase.MiddlewareFunc(
		func(_ context.Context, _ *pocketbase.Request, _ pocketbase.Handler) (*pocketbase.Response, error) {
			return nil, pocketbase.ErrInvalidConfig
		}))

	_, err := chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodGet, "/"),
		func(context.Context, *pocketbase.Request) (*pocketbase.Response, error) {
			called = true

			return nil, nil //nolint:nilnil
		})
	require.ErrorIs(t, err, pocketbase.ErrInvalidConfig)
	assert.False(t, called)
}

func TestChain_ExecuteLeavesRequestUntouched(t *testing.T) {
	t.Parallel()

	cctx := newContext(t, "de")
	cctx.SetCredential(pocketbase.Credential{Token: "T1", Kind: pocketbase.CredentialAdmin})

	chain := pocketbase.NewChain(
		pocketbase.BaseURLResolver(cctx),
		pocketbase.LocaleInjector(cctx),
		pocketbase.AuthInjector(cctx),
		pocketbase.HeaderMiddleware(map[string]string{"X-Trace": "1"}),
	)

	req := pocketbase.NewRequest(http.MethodGet, "/api/collections/posts/records")
	req.Query = pocketbase.NewQuery("page", "1")

	var seen *pocketbase.Request

	_, err := chain.Execute(context.Background(), req, func(_ context.Context, r *pocketbase.Request) (*pocketbase.Response, error) {
		seen = r

		return &pocketbase.Response{StatusCode: http.StatusOK}, nil
	})
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "http://localhost:8090/api/collections/posts/records?page=1", seen.FullURL())
	assert.Equal(t, "de", seen.Headers.Get("Accept-Language"))
	assert.Equal(t, "Bearer T1", seen.Headers.Get("Authorization"))
	assert.Equal(t, "1", seen.Headers.Get("X-Trace"))

	assert.Empty(t, req.URL)
	assert.Empty(t, req.Headers)
}

func TestBaseURLResolver_RejectsAbsolutePath(t *testing.T) {
	t.Parallel()

	chain := pocketbase.NewChain(pocketbase.BaseURLResolver(newContext(t, "")))

	_, err := chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodGet, "https://other.example.com/api"), okTerminal)
	require.Error(t, err)
	assert.True(t, pocketbase.IsInvalidConfig(err))
}

func TestLocaleInjector_EmptyLocale(t *testing.T) {
	t.Parallel()

	chain := pocketbase.NewChain(pocketbase.LocaleInjector(newContext(t, "")))

	_, err := chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodGet, "/"),
		func(_ context.Context, r *pocketbase.Request) (*pocketbase.Response, error) {
			assert.Empty(t, r.Headers.Get("Accept-Language"))

			return okTerminal(context.Background(), r)
		})
	require.NoError(t, err)
}

func TestAuthInjector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		token          string
		requiresAuth   bool
		expectedHeader string
		expectUnauth   bool
	}{
		{name: "anonymous public request", requiresAuth: false},
		{name: "anonymous protected request", requiresAuth: true, expectUnauth: true},
		{name: "authenticated public request", token: "T1", expectedHeader: "Bearer T1"},
		{name: "authenticated protected request", token: "T1", requiresAuth: true, expectedHeader: "Bearer T1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cctx := newContext(t, "")
			if tt.token != "" {
				cctx.SetCredential(pocketbase.Credential{Token: tt.token, Kind: pocketbase.CredentialAdmin})
			}

			req := pocketbase.NewRequest(http.MethodGet, "/api/admins")
			req.RequiresAuth = tt.requiresAuth

			terminalCalled := false

			_, err := pocketbase.NewChain(pocketbase.AuthInjector(cctx)).Execute(context.Background(), req,
				func(ctx context.Context, r *pocketbase.Request) (*pocketbase.Response, error) {
					terminalCalled = true

					assert.Equal(t, tt.expectedHeader, r.Headers.Get("Authorization"))

					return okTerminal(ctx, r)
				})

			if tt.expectUnauth {
				require.ErrorIs(t, err, pocketbase.ErrUnauthenticated)
				assert.Contains(t, err.Error(), "GET /api/admins")
				assert.False(t, terminalCalled)

				return
			}

			require.NoError(t, err)
			assert.True(t, terminalCalled)
		})
	}
}

type entry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type memoryLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *memoryLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry{level: level, msg: msg, fields: fields})
}

func (l *memoryLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *memoryLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *memoryLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *memoryLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	logger := &memoryLogger{}
	chain := pocketbase.NewChain(pocketbase.BaseURLResolver(newContext(t, "")), pocketbase.LoggingMiddleware(logger))

	_, err := chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodGet, "/api/health"), okTerminal)
	require.NoError(t, err)

	_, err = chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodDelete, "/api/admins/a1"),
		func(context.Context, *pocketbase.Request) (*pocketbase.Response, error) {
			return nil, &pocketbase.TransportError{Op: "DELETE", Err: context.DeadlineExceeded}
		})
	require.Error(t, err)

	require.Len(t, logger.entries, 4)
	assert.Equal(t, "API Request", logger.entries[0].msg)
	assert.Equal(t, "http://localhost:8090/api/health", logger.entries[0].fields["url"])
	assert.Equal(t, "API Response", logger.entries[1].msg)
	assert.Equal(t, http.StatusOK, logger.entries[1].fields["status_code"])
	assert.Contains(t, logger.entries[1].fields, "duration_ms")

	assert.Equal(t, "error", logger.entries[3].level)
	assert.Equal(t, "API Response Error", logger.entries[3].msg)
	assert.Equal(t, http.MethodDelete, logger.entries[3].fields["method"])
	assert.True(t, strings.Contains(logger.entries[3].fields["error"].(string), "deadline exceeded"))
	assert.NotContains(t, logger.entries[3].fields, "status_code")
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("waits for tokens", func(t *testing.T) {
		t.Parallel()

		chain := pocketbase.NewChain(pocketbase.NewRateLimitMiddleware(20, 0))

		start := time.Now()

		for range 3 {
			_, err := chain.Execute(context.Background(), pocketbase.NewRequest(http.MethodGet, "/"), okTerminal)
			require.NoError(t, err)
		}

		// One burst token, then two waits of 50ms each.
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("cancelled wait is a transport error", func(t *testing.T) {
		t.Parallel()

		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		require.True(t, limiter.Allow())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := pocketbase.NewChain(pocketbase.RateLimitMiddleware(limiter)).
			Execute(ctx, pocketbase.NewRequest(http.MethodGet, "/"), okTerminal)
		require.Error(t, err)
		assert.Equal(t, pocketbase.KindTransport, pocketbase.ErrorKindOf(err))
	})
}
