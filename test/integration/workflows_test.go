//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

func TestHealth(t *testing.T) {
	config := LoadTestConfig()
	SkipIfNoServer(t, config)

	client := NewClient(t, config)

	health, err := client.Health().Check(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 200, health.Code)
}

func TestAnonymousAdminEndpoint(t *testing.T) {
	config := LoadTestConfig()
	SkipIfNoServer(t, config)

	client := NewClient(t, config)

	_, err := client.Collection().GetList(testContext(t), nil)
	require.Error(t, err)
	assert.True(t, pocketbase.IsUnauthenticated(err))
}

// TestRecordWorkflow_CompleteJourney creates a collection, drives its records
// through the CRUD cycle and removes it again.
//
//nolint:funlen
func TestRecordWorkflow_CompleteJourney(t *testing.T) {
	config := LoadTestConfig()
	SkipIfNoAdmin(t, config)

	ctx := testContext(t)
	client := NewAdminClient(t, config)
	require.True(t, client.Context().IsAuthenticated())

	name := UniqueName("it_posts")
	public := ""

	// 1. Create a public collection
	collection, err := client.Collection().Create(ctx, &pocketbase.MutateConfig{Body: map[string]interface{}{
		"name": name,
		"type": pocketbase.CollectionTypeBase,
		"schema": []map[string]interface{}{
			{"name": "title", "type": "text", "required": true},
			{"name": "views", "type": "number"},
			{"name": "cover", "type": "file", "options": map[string]interface{}{"maxSelect": 1, "maxSize": 5242880}},
		},
		"listRule":   public,
		"viewRule":   public,
		"createRule": public,
		"updateRule": public,
		"deleteRule": public,
	}})
	require.NoError(t, err)
	assert.Equal(t, name, collection.Name)

	defer func() {
		_ = client.Collection().Delete(ctx, collection.ID, nil)
	}()

	records := client.Record(name)

	// 2. Create records, one with a file upload
	first, err := records.Create(ctx, &pocketbase.MutateConfig{Body: map[string]interface{}{
		"title": "First",
		"views": 1,
	}})
	require.NoError(t, err)

	second, err := records.Create(ctx, &pocketbase.MutateConfig{Body: map[string]interface{}{
		"title": "Second",
		"views": 5,
		"cover": pocketbase.NewFile("cover.txt", []byte("cover")),
	}})
	require.NoError(t, err)
	assert.NotEmpty(t, second.GetString("cover"))

	// 3. List with filter and sort
	page, err := records.GetList(ctx, pocketbase.NewListConfig(1, 10).
		WithFilter("views > 0").
		WithSort(pocketbase.Desc("views")))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, 2, page.TotalItems)

	all, err := records.GetFullList(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// 4. Update and view
	_, err = records.Update(ctx, first.ID, &pocketbase.MutateConfig{Body: map[string]interface{}{"views": 10}})
	require.NoError(t, err)

	viewed, err := records.GetOne(ctx, first.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, viewed.Get("views"), 0)

	// 5. Delete and confirm it is gone
	require.NoError(t, records.Delete(ctx, first.ID, nil))

	_, err = records.GetOne(ctx, first.ID, nil)
	require.Error(t, err)
	assert.True(t, pocketbase.IsNotFound(err))

	// 6. Refresh the admin token, then log out
	_, err = client.Admin().AuthRefresh(ctx, nil)
	require.NoError(t, err)

	client.Logout()
	assert.False(t, client.Context().IsAuthenticated())
}
