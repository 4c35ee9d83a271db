package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/reelindex/pkg/extractor"
	"github.com/xhad/reelindex/pkg/llm"
	"github.com/xhad/reelindex/pkg/summarizer"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Describe every extracted poster and store the descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate("llm", "embedding", "store"); err != nil {
			return err
		}
		ctx := cmd.Context()

		titles, err := extractor.ReadImageTitles(cfg.Extractor.ImageTitlesPath)
		if err != nil {
			return err
		}

		model, err := newModel(cfg.LLM.Model)
		if err != nil {
			return err
		}
		describer, err := llm.NewDescriber(model, llm.DescriberConfig{
			Provider:     cfg.LLM.Provider,
			MaxTokens:    cfg.LLM.MaxTokens,
			Temperature:  cfg.LLM.Temperature,
			SystemPrompt: cfg.LLM.SystemPrompt,
			TaskPrompt:   cfg.LLM.TaskPrompt,
		})
		if err != nil {
			return err
		}

		collection, err := openCollection(ctx)
		if err != nil {
			return err
		}
		defer collection.Close()

		bar := getProgressBar(len(titles), "🖼  Describing posters...")
		images := summarizer.NewImages(describer, collection, summarizer.ImagesConfig{
			Dir:        cfg.Extractor.OutputDir,
			Extensions: cfg.Summarizer.Extensions,
			RateLimit:  cfg.LLM.RequestsPerSecond,
			OnProgress: func(file string) {
				bar.Describe(color.BlueString("🖼  Describing %s...", file))
				bar.Add(1)
			},
		}, logger)

		report, err := images.Run(ctx, titles)
		bar.Finish()
		if err != nil {
			return err
		}

		color.Green("\n✓ Stored %d poster descriptions", report.Described)
		if report.Failed > 0 {
			color.Yellow("! %d images could not be described", report.Failed)
		}
		if report.Skipped > 0 {
			color.Yellow("! %d images skipped (extension not in %v)", report.Skipped, cfg.Summarizer.Extensions)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(imagesCmd)
}
