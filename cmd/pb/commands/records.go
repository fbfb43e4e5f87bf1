package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// NewRecordsCommand creates the records command group.
func NewRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "rec"},
		Short:   "Manage collection records",
		Long:    "List, view, create and delete the records of a collection",
	}

	cmd.AddCommand(newRecordsListCommand())
	cmd.AddCommand(newRecordsGetCommand())
	cmd.AddCommand(newRecordsCreateCommand())
	cmd.AddCommand(newRecordsDeleteCommand())

	return cmd
}

func recordsRenderer() *OutputRenderer[[]pocketbase.Record] {
	return &OutputRenderer[[]pocketbase.Record]{
		RenderTable: func(table *tablewriter.Table, records []pocketbase.Record) error {
			columns := recordColumns(records)
			table.Header(headerArgs(columns)...)

			for _, record := range records {
				_ = table.Append(recordRow(record, columns))
			}

			return nil
		},
	}
}

func newRecordsListCommand() *cobra.Command {
	var (
		page    int
		perPage int
		filter  string
		sortBy  string
		expand  string
		fields  string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "list COLLECTION",
		Short: "List records",
		Long:  "List the records of a collection with optional filter, sort and expand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			config := pocketbase.NewListConfig(page, perPage).
				WithFilter(filter).
				WithSort(parseSort(sortBy)...).
				WithExpand(splitList(expand)...)
			config.Fields = fields

			var (
				records []pocketbase.Record
				footer  string
			)

			if all {
				records, err = client.Record(args[0]).GetFullList(cmd.Context(), perPage, config)
			} else {
				var result *pocketbase.ListResult[pocketbase.Record]

				result, err = client.Record(args[0]).GetList(cmd.Context(), config)
				if result != nil {
					records = result.Items
					footer = fmt.Sprintf("Page %d of %d (%d records)", result.Page, result.TotalPages, result.TotalItems)
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list records of %s: %w", args[0], err)
			}

			format := outputFormat()

			err = recordsRenderer().Render(cmd.OutOrStdout(), records, format)
			if err != nil {
				return err
			}

			if footer != "" && isTableFormat(format) {
				fmt.Fprintln(cmd.OutOrStdout(), footer)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 30, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "filter expression, e.g. 'status = \"active\"'")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort fields, e.g. -created,title")
	cmd.Flags().StringVar(&expand, "expand", "", "relations to expand, comma separated")
	cmd.Flags().StringVar(&fields, "fields", "", "fields to return, comma separated")
	cmd.Flags().BoolVar(&all, "all", false, "fetch all pages")

	return cmd
}

func newRecordsGetCommand() *cobra.Command {
	var expand string

	cmd := &cobra.Command{
		Use:   "get COLLECTION ID",
		Short: "Get a record",
		Long:  "Display a single record of a collection",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := client.Record(args[0]).GetOne(cmd.Context(), args[1], &pocketbase.ViewConfig{
				Expand: splitList(expand),
			})
			if err != nil {
				return fmt.Errorf("failed to get record %s of %s: %w", args[1], args[0], err)
			}

			format := outputFormat()
			if !isTableFormat(format) {
				return (&OutputRenderer[*pocketbase.Record]{}).Render(cmd.OutOrStdout(), record, format)
			}

			return recordsRenderer().Render(cmd.OutOrStdout(), []pocketbase.Record{*record}, format)
		},
	}

	cmd.Flags().StringVar(&expand, "expand", "", "relations to expand, comma separated")

	return cmd
}

func newRecordsCreateCommand() *cobra.Command {
	var (
		data  string
		files []string
	)

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create a record",
		Long: `Create a record from a JSON object. Files are attached with --file FIELD=PATH,
which sends the request as multipart/form-data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := buildRecordBody(data, files)
			if err != nil {
				return err
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := client.Record(args[0]).Create(cmd.Context(), &pocketbase.MutateConfig{Body: body})
			if err != nil {
				return fmt.Errorf("failed to create record in %s: %w", args[0], err)
			}

			format := outputFormat()
			if !isTableFormat(format) {
				return (&OutputRenderer[*pocketbase.Record]{}).Render(cmd.OutOrStdout(), record, format)
			}

			printSuccess(cmd.OutOrStdout(), "Created record %s in %s", record.ID, args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "{}", "record fields as a JSON object")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "file field as FIELD=PATH, repeatable")

	return cmd
}

// buildRecordBody parses the JSON fields and attaches files. A field given
// several files becomes a list.
func buildRecordBody(data string, files []string) (map[string]interface{}, error) {
	body := map[string]interface{}{}

	err := json.Unmarshal([]byte(data), &body)
	if err != nil {
		return nil, fmt.Errorf("invalid --data JSON: %w", err)
	}

	attached := map[string][]pocketbase.File{}

	for _, spec := range files {
		field, path, ok := strings.Cut(spec, "=")
		if !ok || field == "" || path == "" {
			return nil, fmt.Errorf("%w: --file %q must be FIELD=PATH", pocketbase.ErrInvalidConfig, spec)
		}

		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		attached[field] = append(attached[field], pocketbase.File{Name: filepath.Base(path), Data: content})
	}

	for field, list := range attached {
		if len(list) == 1 {
			body[field] = list[0]

			continue
		}

		body[field] = list
	}

	return body, nil
}

func newRecordsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete COLLECTION ID",
		Short: "Delete a record",
		Long:  "Delete a record of a collection",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				answer, err := promptLine(cmd, fmt.Sprintf("Delete record %s of %s? (y/N): ", args[1], args[0]))
				if err != nil {
					return err
				}

				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					printWarning(cmd.OutOrStdout(), "Aborted")

					return nil
				}
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Record(args[0]).Delete(cmd.Context(), args[1], nil)
			if err != nil {
				return fmt.Errorf("failed to delete record %s of %s: %w", args[1], args[0], err)
			}

			printSuccess(cmd.OutOrStdout(), "Deleted record %s of %s", args[1], args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}
