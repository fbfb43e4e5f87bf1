package client_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// recordedRequest is what the test server saw of one request.
type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// testServer records every request before handing it to its handler.
type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()

	server := &testServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		assert.NoError(t, err)

		server.mu.Lock()
		server.requests = append(server.requests, recordedRequest{
			Method:   request.Method,
			Path:     request.URL.EscapedPath(),
			RawQuery: request.URL.RawQuery,
			Header:   request.Header.Clone(),
			Body:     body,
		})
		server.mu.Unlock()

		request.Body = io.NopCloser(bytes.NewReader(body))
		handler(writer, request)
	}))
	t.Cleanup(server.Close)

	return server
}

// Hits returns the number of requests received.
func (s *testServer) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Last returns the most recent request.
func (s *testServer) Last(t *testing.T) recordedRequest {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	require.NotEmpty(t, s.requests, "no request reached the server")

	return s.requests[len(s.requests)-1]
}

// Requests returns every request in arrival order.
func (s *testServer) Requests() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]recordedRequest(nil), s.requests...)
}

// respondJSON returns a handler answering every request with status and body.
func respondJSON(status int, body string) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, status, body)
	}
}

func writeJSON(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if body != "" {
		_, _ = writer.Write([]byte(body))
	}
}

// newTestClient creates a client for serverURL. configure may adjust the
// config before the client is built.
func newTestClient(t *testing.T, serverURL string, configure ...func(*pocketbase.Config)) *client.Client {
	t.Helper()

	config := &pocketbase.Config{BaseURL: serverURL}
	for _, fn := range configure {
		fn(config)
	}

	c, err := client.New(context.Background(), config)
	require.NoError(t, err)

	return c
}

func withToken(token string) func(*pocketbase.Config) {
	return func(config *pocketbase.Config) {
		config.Token = token
	}
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation struct {
	Name         string
	ID           string
	ExpectedPath string
	StatusCode   int
	Response     string
	WantErr      bool
	ErrMessage   string
}

// RunGetTests runs a series of get operation tests against the service
// returned by crud.
func RunGetTests[T any](
	t *testing.T,
	tests []TestGetOperation,
	crud func(*client.Client) pocketbase.CRUD[T],
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, respondJSON(testCase.StatusCode, testCase.Response))
			c := newTestClient(t, server.URL, withToken("test-token"))

			result, err := crud(c).GetOne(context.Background(), testCase.ID, nil)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)

			last := server.Last(t)
			assert.Equal(t, http.MethodGet, last.Method)
			assert.Equal(t, testCase.ExpectedPath, last.Path)
		})
	}
}

// TestDeleteOperation represents a generic delete operation test case.
type TestDeleteOperation struct {
	Name         string
	ID           string
	ExpectedPath string
	StatusCode   int
	Response     string
	WantErr      bool
	ErrMessage   string
}

// RunDeleteTests runs a series of delete operation tests against the
// service returned by crud.
func RunDeleteTests[T any](
	t *testing.T,
	tests []TestDeleteOperation,
	crud func(*client.Client) pocketbase.CRUD[T],
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, respondJSON(testCase.StatusCode, testCase.Response))
			c := newTestClient(t, server.URL, withToken("test-token"))

			err := crud(c).Delete(context.Background(), testCase.ID, nil)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				return
			}

			require.NoError(t, err)

			last := server.Last(t)
			assert.Equal(t, http.MethodDelete, last.Method)
			assert.Equal(t, testCase.ExpectedPath, last.Path)
		})
	}
}

// recordingLogger keeps every logged message.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.record(msg) }

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.msgs...)
}
