package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/reelindex/pkg/llm"
)

var (
	queryLimit  int
	queryAnswer bool
	queryStream bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Search the vector store and optionally answer from the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		sections := []string{"embedding", "store"}
		if queryAnswer {
			sections = append(sections, "llm")
		}
		if err := validate(sections...); err != nil {
			return err
		}
		ctx := cmd.Context()
		query := strings.Join(args, " ")

		limit := queryLimit
		if limit <= 0 {
			limit = cfg.Chat.SearchLimit
		}

		collection, err := openCollection(ctx)
		if err != nil {
			return err
		}
		defer collection.Close()

		querySpinner := getSpinner("🔍 Searching...")
		matches, err := collection.Search(ctx, query, limit)
		querySpinner.Finish()
		fmt.Print("\r")
		if err != nil {
			return fmt.Errorf("error querying documents: %w", err)
		}

		if len(matches) == 0 {
			fmt.Fprintln(out, "No matching documents.")
			return nil
		}

		userPrompt("\nYou: %s\n\n", query)
		for i, m := range matches {
			color.Cyan("%d. %s (%s) score=%.3f", i+1, m.Metadata.File, m.Metadata.Source, m.Score)
			fmt.Fprintln(out, m.Document)
			fmt.Fprintln(out)
		}

		if !queryAnswer {
			return nil
		}

		chatEngine, err := newChatEngine()
		if err != nil {
			return err
		}

		if queryStream {
			assistantPrompt("Assistant: ")
			for chunk := range chatEngine.ChatStream(ctx, query, matches) {
				if strings.HasPrefix(chunk, "Error:") {
					color.Red("\n%s", chunk)
					return nil
				}
				assistantPrompt("%s", chunk)
			}
			fmt.Println()
		} else {
			responseSpinner := getSpinner("🤖 Generating response...")
			response, err := chatEngine.Chat(ctx, query, matches)
			responseSpinner.Finish()
			fmt.Print("\r")
			if err != nil {
				color.Red("Error: %v", err)
				return nil
			}
			assistantPrompt("Assistant: %s\n", response)
		}
		fmt.Fprintln(out, llm.FormatSources(matches))
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "Number of matches (defaults to chat.search_limit)")
	queryCmd.Flags().BoolVar(&queryAnswer, "answer", false, "Answer the question with the chat model")
	queryCmd.Flags().BoolVar(&queryStream, "stream", true, "Stream the answer")

	rootCmd.AddCommand(queryCmd)
}
