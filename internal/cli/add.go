package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/sqlite"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user or an activity",
	}
	cmd.AddCommand(newAddUserCmd())
	cmd.AddCommand(newAddActivityCmd())
	return cmd
}

func newAddUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <username> <email>",
		Short: "Add a user; the store assigns the id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				id, err := b.AddUser(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printAdded(cmd, "user_id", id, fmt.Sprintf("User %s added successfully!", args[0]))
			})
		},
	}
}

func newAddActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity <username> <game> <score> <date>",
		Short: "Add an activity for an existing user",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				id, err := b.AddActivity(cmd.Context(), args[0], args[1], args[2], args[3])
				if err != nil {
					return err
				}
				return printAdded(cmd, "activity_id", id, fmt.Sprintf("Activity for %s in %s added successfully!", args[0], args[1]))
			})
		},
	}
}

func printAdded(cmd *cobra.Command, key string, id int64, msg string) error {
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]int64{key: id})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s %d)\n", msg, key, id)
	return err
}
