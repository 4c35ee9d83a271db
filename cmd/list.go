package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every entry in the vector store",
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

		entries, err := backend.List(cmd.Context())
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No documents found in the database.")
			return nil
		}

		fmt.Fprintf(out, "Found %d documents:\n\n", len(entries))
		for i, e := range entries {
			color.Cyan("Document %d:", i+1)
			fmt.Fprintf(out, "ID: %s\n", e.ID)
			fmt.Fprintf(out, "Content: %s\n", e.Document)
			fmt.Fprintf(out, "Metadata: {file: %s, source: %s, type: %s}\n", e.Metadata.File, e.Metadata.Source, e.Metadata.Type)
			fmt.Fprintln(out, strings.Repeat("-", 80)+"\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
