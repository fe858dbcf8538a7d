package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/sqlite"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables with their columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				schema, err := b.DescribeSchema(cmd.Context())
				if err != nil {
					return err
				}
				return printSchema(cmd.OutOrStdout(), schema)
			})
		},
	}
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the columns of a table in declaration order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				cols, err := b.ListColumns(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printList(cmd.OutOrStdout(), cols)
			})
		},
	}
}
