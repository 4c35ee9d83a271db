package cmd

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/reelindex/pkg/extractor"
	"github.com/xhad/reelindex/pkg/pdf"
)

var (
	extractPDF     string
	extractOut     string
	extractPairing string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract poster images, titles and page text from the PDF",
	Long: `Extract saves every embedded image larger than the minimum dimension as <rank>.<ext>,
then pairs images with the ranked titles found in the page text and writes
image_titles.json and page_texts.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if extractPDF != "" {
			cfg.Extractor.PDFPath = extractPDF
		}
		if extractOut != "" {
			cfg.Extractor.OutputDir = extractOut
		}
		if extractPairing != "" {
			cfg.Extractor.Pairing = extractPairing
		}
		if err := validate("extractor"); err != nil {
			return err
		}

		ex := extractor.NewWithConfig(extractor.Config{
			OutputDir:    cfg.Extractor.OutputDir,
			MinDimension: cfg.Extractor.MinDimension,
			RankCeiling:  cfg.Extractor.RankCeiling,
			IncludeCover: cfg.Extractor.IncludeCover,
			Pairing:      cfg.Extractor.Pairing,
		}, pdf.NewPoppler(pdf.PopplerConfig{}), logger)

		color.Blue("\nExtracting from %s\n", cfg.Extractor.PDFPath)
		spinner := getSpinner("📄 Reading PDF...")
		result, err := ex.Run(cmd.Context(), cfg.Extractor.PDFPath)
		spinner.Finish()
		if err != nil {
			return err
		}

		if err := extractor.WriteJSON(cfg.Extractor.ImageTitlesPath, result.ImageTitles); err != nil {
			return err
		}
		if err := extractor.WriteJSON(cfg.Extractor.PageTextsPath, result.PageTexts); err != nil {
			return err
		}

		color.Green("\n✓ Images extracted to folder: %s", cfg.Extractor.OutputDir)
		fmt.Fprintf(out, "Total images found: %d\n", result.Stats.Total)
		fmt.Fprintf(out, "Images saved (dimensions > %dpx): %d\n", cfg.Extractor.MinDimension, result.Stats.Saved)
		fmt.Fprintf(out, "Images skipped (dimensions <= %dpx): %d\n", cfg.Extractor.MinDimension, result.Stats.Skipped)
		color.Green("✓ Paired %d images with titles → %s", len(result.ImageTitles), cfg.Extractor.ImageTitlesPath)
		color.Green("✓ Saved text of %d pages → %s", len(result.PageTexts), cfg.Extractor.PageTextsPath)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "PDF to extract from (overrides extractor.pdf_path)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Directory for extracted images")
	extractCmd.Flags().StringVar(&extractPairing, "pairing", "", "Image/title pairing: positional (default) or rank")

	rootCmd.AddCommand(extractCmd)
}
