// Package extractor pulls poster images and ranked titles out of a movie-list PDF.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/pkg/pdf"
)

const (
	PairingRank       = "rank"
	PairingPositional = "positional"
)

// ErrRankExhausted is returned when more images qualify than there are ranks below the ceiling.
var ErrRankExhausted = errors.New("no ranks left below the rank ceiling")

type Config struct {
	OutputDir    string
	MinDimension int
	RankCeiling  int
	IncludeCover bool
	Pairing      string
}

type Extractor struct {
	config Config
	reader pdf.Reader
	logger *slog.Logger
}

// Result bundles everything a full extraction run produces.
type Result struct {
	Stats       models.ExtractStats
	ImageTitles models.ImageTitleMap
	PageTexts   models.PageTextMap
}

func NewWithConfig(config Config, reader pdf.Reader, logger *slog.Logger) *Extractor {
	if config.OutputDir == "" {
		config.OutputDir = "extracted_images"
	}
	if config.MinDimension == 0 {
		config.MinDimension = 600
	}
	if config.RankCeiling == 0 {
		config.RankCeiling = 26
	}
	if config.Pairing == "" {
		config.Pairing = PairingPositional
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		config: config,
		reader: reader,
		logger: logger,
	}
}

// Run extracts the images, then the titles and page text.
func (e *Extractor) Run(ctx context.Context, pdfPath string) (*Result, error) {
	stats, err := e.ExtractImages(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	titles, pages, err := e.ExtractTitlesAndText(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	return &Result{Stats: stats, ImageTitles: titles, PageTexts: pages}, nil
}

// ExtractImages saves every image whose width and height both exceed MinDimension.
// Saved images are numbered downward from RankCeiling-1 in extraction order.
func (e *Extractor) ExtractImages(ctx context.Context, pdfPath string) (models.ExtractStats, error) {
	var stats models.ExtractStats

	if err := os.MkdirAll(e.config.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("creating output dir: %w", err)
	}

	// page 1 is the cover
	firstPage := 2
	if e.config.IncludeCover {
		firstPage = 1
	}

	images, err := e.reader.Images(ctx, pdfPath, firstPage)
	if err != nil {
		return stats, fmt.Errorf("extracting images: %w", err)
	}

	for _, raw := range images {
		if raw.Page < firstPage {
			continue
		}
		stats.Total++

		cfg, format, err := image.DecodeConfig(bytes.NewReader(raw.Data))
		if err != nil {
			return stats, fmt.Errorf("decoding image %d on page %d: %w", raw.Index, raw.Page, err)
		}

		if cfg.Width <= e.config.MinDimension || cfg.Height <= e.config.MinDimension {
			e.logger.Debug("skipping small image",
				"page", raw.Page, "width", cfg.Width, "height", cfg.Height)
			continue
		}

		rank := e.config.RankCeiling - (stats.Saved + 1)
		if rank < 1 {
			return stats, fmt.Errorf("image %d on page %d: %w", raw.Index, raw.Page, ErrRankExhausted)
		}

		img := models.ExtractedImage{
			Data:   raw.Data,
			Ext:    imageExt(raw.Ext, format),
			Width:  cfg.Width,
			Height: cfg.Height,
			Page:   raw.Page,
			Rank:   rank,
		}
		if err := os.WriteFile(filepath.Join(e.config.OutputDir, img.Filename()), img.Data, 0o644); err != nil {
			return stats, fmt.Errorf("saving %s: %w", img.Filename(), err)
		}
		stats.Saved++
	}

	stats.Skipped = stats.Total - stats.Saved
	e.logger.Info("images extracted",
		"dir", e.config.OutputDir, "total", stats.Total, "saved", stats.Saved, "skipped", stats.Skipped)

	return stats, nil
}

// ExtractTitlesAndText reads every page, collects the ranked titles in document order and
// pairs them with the image files already in OutputDir.
func (e *Extractor) ExtractTitlesAndText(ctx context.Context, pdfPath string) (models.ImageTitleMap, models.PageTextMap, error) {
	files, err := ListImageFiles(e.config.OutputDir)
	if err != nil {
		return nil, nil, err
	}

	pages, err := e.reader.Pages(ctx, pdfPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading page text: %w", err)
	}

	pageTexts := make(models.PageTextMap, len(pages))
	var titles []models.TitleEntry
	for _, page := range pages {
		pageTexts[PageLabel(page.Number)] = page.Text
		titles = append(titles, ParseTitles(page.Text)...)
	}

	var pairs models.ImageTitleMap
	switch e.config.Pairing {
	case PairingPositional:
		pairs = PairPositional(files, titles)
	case PairingRank:
		pairs = PairByRank(files, titles)
		if want := min(len(files), len(titles)); len(pairs) < want {
			e.logger.Warn("rank pairing left images without a title: file numbers do not match title ranks",
				"images", len(files), "titles", len(titles), "pairs", len(pairs), "expected", want)
		}
	default:
		return nil, nil, fmt.Errorf("unknown pairing mode %q", e.config.Pairing)
	}

	e.logger.Info("titles matched",
		"images", len(files), "titles", len(titles), "pairs", len(pairs), "mode", e.config.Pairing)

	return pairs, pageTexts, nil
}

// PageLabel is the key used for a page in the page text map.
func PageLabel(number int) string {
	return fmt.Sprintf("page %d", number)
}

func imageExt(ext, format string) string {
	if ext != "" {
		return ext
	}
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
