package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/records"
	"github.com/mesh-intelligence/querybench/internal/sqlite"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

// loaders maps a load target to the backend operation that stores it.
var loaders = map[string]func(*sqlite.Backend, context.Context, []types.Record) (int, error){
	"users":      (*sqlite.Backend).LoadUsers,
	"activities": (*sqlite.Backend).LoadActivities,
}

func newLoadCmd() *cobra.Command {
	var (
		format string
		sheet  string
	)

	cmd := &cobra.Command{
		Use:   "load users|activities <file>",
		Short: "Bulk-load records from a CSV, JSONL, YAML or XLSX file",
		Long: "Append every record of the file to Users or Activities. The format\n" +
			"comes from --format or the file extension. Fields not in the table\n" +
			"are ignored; a record missing a required field stops the load after\n" +
			"the records before it were stored.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, path := args[0], args[1]
			loadFn, ok := loaders[target]
			if !ok {
				return fmt.Errorf("%w: unknown load target %q (want users or activities)", types.ErrValidation, target)
			}

			f, err := parseFormat(format, path)
			if err != nil {
				return err
			}
			recs, err := records.ReadFile(path, f, records.Options{Sheet: sheet})
			if err != nil {
				return err
			}

			return withStore(func(b *sqlite.Backend) error {
				n, err := loadFn(b, cmd.Context(), recs)
				if flags.jsonMode {
					if jerr := printJSON(cmd.OutOrStdout(), map[string]any{"table": target, "loaded": n}); jerr != nil {
						return jerr
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s %s from %s\n", humanize.Comma(int64(n)), target, path)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "source format: csv, jsonl, yaml or xlsx (default: from extension)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
	return cmd
}
