package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// HealthClient implements pocketbase.HealthClient.
type HealthClient struct {
	sender pocketbase.Sender
}

// NewHealthClient creates a new health client.
func NewHealthClient(sender pocketbase.Sender) *HealthClient {
	return &HealthClient{sender: sender}
}

// Check implements pocketbase.HealthClient.Check.
func (c *HealthClient) Check(ctx context.Context) (*pocketbase.HealthResponse, error) {
	req := pocketbase.NewRequest(http.MethodGet, constants.PathHealth)

	var health pocketbase.HealthResponse

	err := sendAndDecode(ctx, c.sender, req, &health, "health response")
	if err != nil {
		return nil, fmt.Errorf("checking health: %w", err)
	}

	return &health, nil
}
