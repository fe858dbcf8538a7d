package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/pkg/querybench"
)

const modulePath = "github.com/mesh-intelligence/querybench"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the querybench version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "querybench v%s\nmodule: %s\n", querybench.Version, modulePath)
			return nil
		},
	}
}
