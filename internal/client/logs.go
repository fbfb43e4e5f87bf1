package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// LogsClient implements pocketbase.LogsClient.
type LogsClient struct {
	*CRUDService[pocketbase.LogRequest]

	sender pocketbase.Sender
}

// NewLogsClient creates a new request logs client.
func NewLogsClient(sender pocketbase.Sender, cctx *pocketbase.ClientContext) *LogsClient {
	return &LogsClient{
		CRUDService: NewCRUDService[pocketbase.LogRequest](sender, cctx, constants.PathLogRequests, true),
		sender:      sender,
	}
}

// GetStats implements pocketbase.LogsClient.GetStats.
func (c *LogsClient) GetStats(ctx context.Context, filter string) ([]pocketbase.LogRequestStat, error) {
	req := pocketbase.NewRequest(http.MethodGet, constants.PathLogRequestStats)
	req.RequiresAuth = true

	if filter != "" {
		req.Query.Add(constants.QueryFilter, filter)
	}

	var stats []pocketbase.LogRequestStat

	err := sendAndDecode(ctx, c.sender, req, &stats, "log stats")
	if err != nil {
		return nil, fmt.Errorf("getting log stats: %w", err)
	}

	return stats, nil
}
