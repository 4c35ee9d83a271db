package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/internal/types"
	"github.com/xhad/reelindex/pkg/processor"
)

// Pages stores page text directly, without a model call.
type Pages struct {
	processor processor.Processor
	store     types.RecordStore
	logger    *slog.Logger
}

func NewPages(p processor.Processor, store types.RecordStore, logger *slog.Logger) *Pages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pages{processor: p, store: store, logger: logger}
}

// Run stores every page in one call and returns how many records were written.
func (s *Pages) Run(ctx context.Context, pages models.PageTextMap) (int, error) {
	records, err := s.processor.Process(pages)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	for _, r := range records {
		s.logger.Debug("processed page", "file", r.File, "source", r.Source)
	}

	ids, err := s.store.Add(ctx, records)
	if err != nil {
		return len(ids), fmt.Errorf("failed to store pages: %w", err)
	}
	return len(ids), nil
}
