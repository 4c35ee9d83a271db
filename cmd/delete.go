package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete entries from the vector store by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := validate("store"); err != nil {
			return err
		}

		backend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer backend.Close()

		// a failed delete is reported, not fatal
		n, err := backend.Delete(cmd.Context(), args)
		if err != nil {
			fmt.Fprintln(out, color.RedString("Error deleting documents: %v", err))
			return nil
		}
		fmt.Fprintln(out, color.GreenString("Successfully deleted %d documents", n))
		if missing := len(args) - n; missing > 0 {
			fmt.Fprintln(out, color.YellowString("%d ids were not found", missing))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
