package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/reelindex/pkg/extractor"
	"github.com/xhad/reelindex/pkg/processor"
	"github.com/xhad/reelindex/pkg/summarizer"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Store the extracted page text",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate("embedding", "store", "pages"); err != nil {
			return err
		}
		ctx := cmd.Context()

		pageTexts, err := extractor.ReadPageTexts(cfg.Extractor.PageTextsPath)
		if err != nil {
			return err
		}

		collection, err := openCollection(ctx)
		if err != nil {
			return err
		}
		defer collection.Close()

		p := processor.NewWithConfig(processor.ProcessorConfig{
			ChunkSize:           cfg.Pages.ChunkSize,
			ChunkOverlap:        cfg.Pages.ChunkOverlap,
			NormalizeWhitespace: cfg.Pages.NormalizeWhitespace,
		})

		spinner := getSpinner("💾 Storing pages in vector database...")
		n, err := summarizer.NewPages(p, collection, logger).Run(ctx, pageTexts)
		spinner.Finish()
		if err != nil {
			return err
		}

		color.Green("\n✓ Added %d pages to the database", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
