package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "cols"},
		Short:   "Manage collections",
		Long:    "List and inspect PocketBase collections. Requires an admin login.",
	}

	cmd.AddCommand(newCollectionsListCommand())
	cmd.AddCommand(newCollectionsGetCommand())

	return cmd
}

func newCollectionsListCommand() *cobra.Command {
	var (
		page    int
		perPage int
		filter  string
		sortBy  string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Long:  "List the collections of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAuthenticatedClient(cmd.Context())
			if err != nil {
				return err
			}

			config := pocketbase.NewListConfig(page, perPage).
				WithFilter(filter).
				WithSort(parseSort(sortBy)...)

			var collections []pocketbase.Collection

			if all {
				collections, err = client.Collection().GetFullList(cmd.Context(), perPage, config)
			} else {
				var result *pocketbase.ListResult[pocketbase.Collection]

				result, err = client.Collection().GetList(cmd.Context(), config)
				if result != nil {
					collections = result.Items
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list collections: %w", err)
			}

			renderer := &OutputRenderer[[]pocketbase.Collection]{
				RenderTable: func(table *tablewriter.Table, collections []pocketbase.Collection) error {
					table.Header("ID", "Name", "Type", "System", "Fields")

					for _, collection := range collections {
						_ = table.Append(collection.ID, collection.Name, collection.Type,
							fmt.Sprint(collection.System), fmt.Sprint(len(collection.Schema)))
					}

					return nil
				},
			}

			return renderer.Render(cmd.OutOrStdout(), collections, outputFormat())
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 30, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "filter expression")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort fields, e.g. -created,name")
	cmd.Flags().BoolVar(&all, "all", false, "fetch all pages")

	return cmd
}

func newCollectionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME_OR_ID",
		Short: "Get collection details",
		Long:  "Display the schema and API rules of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAuthenticatedClient(cmd.Context())
			if err != nil {
				return err
			}

			collection, err := client.Collection().GetOne(cmd.Context(), args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get collection %s: %w", args[0], err)
			}

			renderer := &OutputRenderer[*pocketbase.Collection]{
				RenderTable: func(table *tablewriter.Table, collection *pocketbase.Collection) error {
					table.Header("Field", "Type", "Required", "System")

					for _, field := range collection.Schema {
						_ = table.Append(field.Name, field.Type, fmt.Sprint(field.Required), fmt.Sprint(field.System))
					}

					return nil
				},
			}

			format := outputFormat()
			if isTableFormat(format) {
				fmt.Fprintf(cmd.OutOrStdout(), "Collection %s (%s)\n", collection.Name, collection.Type)
			}

			return renderer.Render(cmd.OutOrStdout(), collection, format)
		},
	}
}
