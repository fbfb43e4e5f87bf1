package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

const defaultJSONIndent = 2

// OutputRenderer writes data in the selected output format.
type OutputRenderer[T any] struct {
	RenderTable func(table *tablewriter.Table, data T) error
}

// Render outputs data in the given format.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("encoding data to JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(defaultJSONIndent)

		err := encoder.Encode(toYAMLValue(data))
		if err != nil {
			return fmt.Errorf("encoding data to YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(w)

		err := o.RenderTable(table, data)
		if err != nil {
			return err
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownFormat, format)
	}
}

// printSuccess writes a confirmation line, green on terminals.
func printSuccess(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

// printWarning writes a notice that nothing was changed, yellow on terminals.
func printWarning(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.FgYellow).Fprintf(w, format+"\n", args...)
}

// outputFormat returns the format selected with --output.
func outputFormat() string {
	return viper.GetString(KeyOutput)
}

func isTableFormat(format string) bool {
	return format == constants.FormatTable || format == ""
}

// toYAMLValue round-trips data through JSON so records render with their
// flattened field names.
func toYAMLValue(data interface{}) interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}

	var generic interface{}

	err = json.Unmarshal(raw, &generic)
	if err != nil {
		return data
	}

	return generic
}

// truncate shortens long cell values.
func truncate(value string) string {
	if len(value) <= constants.StringTruncationLimit {
		return value
	}

	return value[:constants.StringTruncationLimit-3] + "..."
}

// formatValue renders a record field for a table cell.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return truncate(v)
	case float64, bool:
		return fmt.Sprint(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return constants.NotAvailable
		}

		return truncate(string(raw))
	}
}

// recordColumns returns "id" followed by the sorted data keys of records.
func recordColumns(records []pocketbase.Record) []string {
	seen := map[string]struct{}{}

	for _, record := range records {
		for key := range record.Data {
			seen[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return append([]string{"id"}, keys...)
}

// recordRow renders one record for the given columns.
func recordRow(record pocketbase.Record, columns []string) []string {
	row := make([]string, 0, len(columns))

	for _, column := range columns {
		if column == "id" {
			row = append(row, record.ID)

			continue
		}

		row = append(row, formatValue(record.Data[column]))
	}

	return row
}

func headerArgs(columns []string) []any {
	args := make([]any, len(columns))
	for i, column := range columns {
		args[i] = column
	}

	return args
}
