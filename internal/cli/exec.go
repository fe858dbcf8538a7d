package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/records"
	"github.com/mesh-intelligence/querybench/internal/sqlite"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

func newExecCmd() *cobra.Command {
	var (
		file     string
		out      string
		outFmt   string
		outSheet string
	)

	cmd := &cobra.Command{
		Use:   "exec [sql|-]",
		Short: "Execute query text against the store",
		Long: "Run the text exactly as given: reads, writes and schema changes are\n" +
			"all allowed. The text comes from the argument, from -f, or from stdin.\n" +
			"With --out the result set is also written to a CSV, JSONL or XLSX file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case file != "" && len(args) > 0:
				return fmt.Errorf("%w: give query text or -f, not both", types.ErrValidation)
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read query file: %w", err)
				}
				text = string(data)
			default:
				var err error
				if text, err = textArg(cmd.InOrStdin(), args); err != nil {
					return err
				}
			}

			var format records.Format
			if out != "" {
				var err error
				if format, err = parseFormat(outFmt, out); err != nil {
					return err
				}
			}

			return withStore(func(b *sqlite.Backend) error {
				res, err := b.Execute(cmd.Context(), text)
				if err != nil {
					return err
				}
				if err := printResult(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				if out == "" {
					return nil
				}
				if err := records.WriteFile(out, format, res, records.Options{Sheet: outSheet}); err != nil {
					return fmt.Errorf("%w: export: %v", types.ErrValidation, err)
				}
				current.log.Info().Str("path", out).Int("rows", len(res.Rows)).Msg("result exported")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read query text from file")
	cmd.Flags().StringVar(&out, "out", "", "also write the result set to this file")
	cmd.Flags().StringVar(&outFmt, "out-format", "", "export format: csv, jsonl or xlsx (default: from extension)")
	cmd.Flags().StringVar(&outSheet, "sheet", "", "XLSX sheet name for --out (default: Result)")
	return cmd
}
