package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// NewHealthCommand creates the health command.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Query the health endpoint of the configured PocketBase server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ShortHTTPTimeout)
			defer cancel()

			health, err := client.Health().Check(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			renderer := &OutputRenderer[*pocketbase.HealthResponse]{
				RenderTable: func(table *tablewriter.Table, health *pocketbase.HealthResponse) error {
					table.Header("Property", "Value")
					_ = table.Append("Code", fmt.Sprint(health.Code))
					_ = table.Append("Message", health.Message)

					keys := make([]string, 0, len(health.Data))
					for key := range health.Data {
						keys = append(keys, key)
					}

					sort.Strings(keys)

					for _, key := range keys {
						_ = table.Append(key, formatValue(health.Data[key]))
					}

					return nil
				},
			}

			return renderer.Render(cmd.OutOrStdout(), health, outputFormat())
		},
	}
}
