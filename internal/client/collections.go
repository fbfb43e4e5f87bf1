package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// CollectionsClient implements pocketbase.CollectionsClient.
type CollectionsClient struct {
	*CRUDService[pocketbase.Collection]

	sender pocketbase.Sender
}

// NewCollectionsClient creates a new collections client.
func NewCollectionsClient(sender pocketbase.Sender, cctx *pocketbase.ClientContext) *CollectionsClient {
	return &CollectionsClient{
		CRUDService: NewCRUDService[pocketbase.Collection](sender, cctx, constants.PathCollections, true),
		sender:      sender,
	}
}

// Import implements pocketbase.CollectionsClient.Import. With deleteMissing,
// collections absent from the list are removed on the server.
func (c *CollectionsClient) Import(ctx context.Context, collections []pocketbase.Collection, deleteMissing bool) error {
	if collections == nil {
		collections = []pocketbase.Collection{}
	}

	req, err := newJSONRequest(http.MethodPut, constants.PathCollectionImport, map[string]interface{}{
		"collections":   collections,
		"deleteMissing": deleteMissing,
	})
	if err != nil {
		return err
	}

	req.RequiresAuth = true

	err = sendAndDecode(ctx, c.sender, req, nil, "")
	if err != nil {
		return fmt.Errorf("importing collections: %w", err)
	}

	return nil
}
