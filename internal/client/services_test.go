package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

func TestHealthClient_Check(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"code":200,"message":"API is healthy.","data":{"canBackup":true}}`))
	c := newTestClient(t, server.URL)

	health, err := c.Health().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, health.Code)
	assert.Equal(t, "API is healthy.", health.Message)
	assert.Equal(t, true, health.Data["canBackup"])
	assert.Equal(t, "/api/health", server.Last(t).Path)
}

func TestCollectionsClient(t *testing.T) {
	t.Parallel()

	t.Run("get one", func(t *testing.T) {
		t.Parallel()

		RunGetTests(t, []TestGetOperation{
			{
				Name:         "by name",
				ID:           "posts",
				ExpectedPath: "/api/collections/posts",
				StatusCode:   http.StatusOK,
				Response:     `{"id":"c1","name":"posts","type":"base","schema":[{"name":"title","type":"text","required":true}]}`,
			},
		}, func(c *client.Client) pocketbase.CRUD[pocketbase.Collection] {
			return c.Collection()
		})
	})

	t.Run("import", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, respondJSON(http.StatusNoContent, ""))
		c := newTestClient(t, server.URL, withToken("T0"))

		err := c.Collection().Import(context.Background(), []pocketbase.Collection{
			{Name: "posts", Type: pocketbase.CollectionTypeBase},
		}, true)
		require.NoError(t, err)

		last := server.Last(t)
		assert.Equal(t, http.MethodPut, last.Method)
		assert.Equal(t, "/api/collections/import", last.Path)
		assert.Contains(t, string(last.Body), `"deleteMissing":true`)
		assert.Contains(t, string(last.Body), `"name":"posts"`)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		RunDeleteTests(t, []TestDeleteOperation{
			{
				Name:         "by id",
				ID:           "c1",
				ExpectedPath: "/api/collections/c1",
				StatusCode:   http.StatusNoContent,
			},
		}, func(c *client.Client) pocketbase.CRUD[pocketbase.Collection] {
			return c.Collection()
		})
	})
}

func TestAdminsClient_GetOne(t *testing.T) {
	t.Parallel()

	RunGetTests(t, []TestGetOperation{
		{
			Name:         "found",
			ID:           "a1",
			ExpectedPath: "/api/admins/a1",
			StatusCode:   http.StatusOK,
			Response:     `{"id":"a1","email":"admin@example.com","avatar":0}`,
		},
	}, func(c *client.Client) pocketbase.CRUD[pocketbase.Admin] {
		return c.Admin()
	})
}

func TestSettingsClient(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/api/settings":
			writeJSON(writer, http.StatusOK, `{"meta":{"appName":"Acme"}}`)
		case "/api/settings/apple/generate-client-secret":
			writeJSON(writer, http.StatusOK, `{"secret":"apple-secret"}`)
		default:
			writeJSON(writer, http.StatusNoContent, "")
		}
	})
	c := newTestClient(t, server.URL, withToken("T0"))
	ctx := context.Background()

	settings, err := c.Settings().GetAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, settings, "meta")

	_, err = c.Settings().Update(ctx, map[string]interface{}{"meta": map[string]interface{}{"appName": "Acme"}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, server.Last(t).Method)

	require.NoError(t, c.Settings().TestS3(ctx, ""))
	last := server.Last(t)
	assert.Equal(t, "/api/settings/test/s3", last.Path)
	assert.JSONEq(t, `{"filesystem":"storage"}`, string(last.Body))

	require.NoError(t, c.Settings().TestEmail(ctx, "ops@example.com", "verification"))
	last = server.Last(t)
	assert.Equal(t, "/api/settings/test/email", last.Path)
	assert.JSONEq(t, `{"email":"ops@example.com","template":"verification"}`, string(last.Body))

	err = c.Settings().TestEmail(ctx, "", "verification")
	require.Error(t, err)
	assert.True(t, pocketbase.IsInvalidConfig(err))

	secret, err := c.Settings().GenerateAppleClientSecret(ctx, &pocketbase.AppleClientSecretRequest{
		ClientID: "com.example",
		TeamID:   "TEAM",
		KeyID:    "KEY",
		Duration: 3600,
	})
	require.NoError(t, err)
	assert.Equal(t, "apple-secret", secret.Secret)

	for _, request := range server.Requests() {
		assert.Equal(t, "Bearer T0", request.Header.Get("Authorization"))
	}
}

func TestLogsClient(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/api/logs/requests/stats":
			writeJSON(writer, http.StatusOK, `[{"total":4,"date":"2024-01-01 10:00:00.000Z"}]`)
		default:
			writeJSON(writer, http.StatusOK, `{"page":1,"perPage":30,"totalItems":1,"items":[
				{"id":"l1","url":"/api/health","method":"GET","status":200}
			]}`)
		}
	})
	c := newTestClient(t, server.URL, withToken("T0"))

	list, err := c.Logs().GetList(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "/api/logs/requests", server.Last(t).Path)

	stats, err := c.Logs().GetStats(context.Background(), "status >= 400")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 4, stats[0].Total)
	assert.Equal(t, "status >= 400", mustQuery(t, server.Last(t).RawQuery).Get("filter"))
}

func TestRecordsClient_AuthCollectionOperations(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/api/collections/users/auth-methods" {
			writeJSON(writer, http.StatusOK, `{"usernamePassword":true,"emailPassword":true,
				"authProviders":[{"name":"github","state":"s","codeVerifier":"v","codeChallenge":"c","codeChallengeMethod":"S256","authUrl":"https://github.com/login"}]}`)

			return
		}

		writeJSON(writer, http.StatusNoContent, "")
	})
	c := newTestClient(t, server.URL)
	users := c.Record("users")

	methods, err := users.ListAuthMethods(context.Background())
	require.NoError(t, err)
	assert.True(t, methods.EmailPassword)
	require.Len(t, methods.AuthProviders, 1)
	assert.Equal(t, "github", methods.AuthProviders[0].Name)

	require.NoError(t, users.RequestVerification(context.Background(), "jane@example.com", nil))
	last := server.Last(t)
	assert.Equal(t, "/api/collections/users/request-verification", last.Path)
	assert.JSONEq(t, `{"email":"jane@example.com"}`, string(last.Body))

	require.NoError(t, users.ConfirmVerification(context.Background(), "verify-token", nil))
	last = server.Last(t)
	assert.Equal(t, "/api/collections/users/confirm-verification", last.Path)
	assert.JSONEq(t, `{"token":"verify-token"}`, string(last.Body))

	err = users.ConfirmVerification(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, pocketbase.IsInvalidConfig(err))
	assert.Equal(t, 3, server.Hits())
}

func TestRecordsClient_CollectionNameEscaped(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, respondJSON(http.StatusOK, `{"page":1,"perPage":30,"totalItems":0,"items":[]}`))
	c := newTestClient(t, server.URL)

	_, err := c.Record("my posts").GetList(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/collections/my%20posts/records", server.Last(t).Path)
	assert.Equal(t, "/api/collections/my%20posts/records", client.RecordsPath("my posts"))
}
