// Package summarizer runs the two store-writing stages: poster descriptions and page text.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/internal/types"
	"github.com/xhad/reelindex/pkg/extractor"
	"github.com/xhad/reelindex/pkg/llm"
	"golang.org/x/time/rate"
)

type ImagesConfig struct {
	Dir        string
	Extensions []string
	RateLimit  float64 // describe calls per second
	OnProgress func(file string)
}

// Report counts what happened to each image of a run.
type Report struct {
	Described int
	Skipped   int // extension not handled
	Failed    int // describe call failed
}

type Images struct {
	config    ImagesConfig
	describer types.Describer
	store     types.RecordStore
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewImages(describer types.Describer, store types.RecordStore, config ImagesConfig, logger *slog.Logger) *Images {
	if config.Dir == "" {
		config.Dir = "extracted_images"
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".png", ".jpg", ".jpeg"}
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Images{
		config:    config,
		describer: describer,
		store:     store,
		limiter:   rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:    logger,
	}
}

func (s *Images) shouldProcess(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, allowed := range s.config.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// Run describes every image in titles and stores each description as soon as it exists,
// so a crash keeps everything stored before it.
func (s *Images) Run(ctx context.Context, titles models.ImageTitleMap) (Report, error) {
	var report Report

	files := make([]string, 0, len(titles))
	for file := range titles {
		files = append(files, file)
	}

	for _, file := range extractor.SortImageFiles(files) {
		title := titles[file]
		if !s.shouldProcess(file) {
			s.logger.Debug("skipping image with unhandled extension", "file", file)
			report.Skipped++
			continue
		}

		if s.config.OnProgress != nil {
			s.config.OnProgress(file)
		}

		data, err := os.ReadFile(filepath.Join(s.config.Dir, file))
		if err != nil {
			return report, fmt.Errorf("failed to read image: %w", err)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		summary, err := s.describer.Describe(ctx, data, llm.ImageMIMEType(file), title)
		if err == nil && strings.TrimSpace(summary) == "" {
			err = llm.ErrEmptyResponse
		}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			s.logger.Warn("failed to describe image", "file", file, "title", title, "error", err)
			report.Failed++
			continue
		}
		s.logger.Info("generated summary", "file", file, "title", title)

		record := models.SummaryRecord{
			File:   file,
			Text:   fmt.Sprintf("%s: %s", file, summary),
			Source: title,
			Type:   models.TypeImage,
		}
		if _, err := s.store.Add(ctx, []models.SummaryRecord{record}); err != nil {
			return report, fmt.Errorf("failed to store summary for %s: %w", file, err)
		}
		report.Described++
	}

	return report, nil
}
