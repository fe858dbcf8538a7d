package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/mesh-intelligence/querybench/internal/highlight"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printResult renders an execution result as a table, or as JSON in
// --json mode. Write statements print the affected row count.
func printResult(w io.Writer, res *types.Result) error {
	if flags.jsonMode {
		return printJSON(w, res)
	}
	if !res.IsQuery() {
		_, err := fmt.Fprintf(w, "OK, %s %s affected\n", humanize.Comma(res.RowsAffected), plural(res.RowsAffected, "row"))
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(res.Strings())
	table.Render()

	n := int64(len(res.Rows))
	_, err := fmt.Fprintf(w, "%s %s\n", humanize.Comma(n), plural(n, "row"))
	return err
}

// printSchema renders tables with their columns.
func printSchema(w io.Writer, schema []types.TableInfo) error {
	if flags.jsonMode {
		return printJSON(w, schema)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"table", "columns"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, t := range schema {
		table.Append([]string{t.Name, strings.Join(t.Columns, ", ")})
	}
	table.Render()
	return nil
}

// printList writes one item per line, or a JSON array.
func printList(w io.Writer, items []string) error {
	if flags.jsonMode {
		return printJSON(w, items)
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item); err != nil {
			return err
		}
	}
	return nil
}

// printQuery writes generated query text, coloured when w is a terminal.
func printQuery(w io.Writer, text string) error {
	if flags.jsonMode {
		return printJSON(w, map[string]any{
			"query": text,
			"spans": highlight.Highlight(text),
		})
	}
	_, err := fmt.Fprintln(w, highlight.Apply(text, highlight.Highlight(text), highlight.StyleFor(w)))
	return err
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
