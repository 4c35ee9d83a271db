package types

import (
	"context"

	"github.com/xhad/reelindex/internal/models"
)

// Core interfaces

// Backend persists entries and answers similarity queries.
type Backend interface {
	Upsert(ctx context.Context, entries []models.Entry) error
	List(ctx context.Context) ([]models.Entry, error)
	Delete(ctx context.Context, ids []string) (int, error)
	Query(ctx context.Context, embedding []float32, limit int) ([]models.Match, error)
	Close()
}

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Describer produces a natural-language description of a poster image.
type Describer interface {
	Describe(ctx context.Context, image []byte, mimeType, title string) (string, error)
}

// RecordStore is the single persistence entry point shared by the summarizers and the
// retrieval surfaces.
type RecordStore interface {
	Add(ctx context.Context, records []models.SummaryRecord) ([]string, error)
	Search(ctx context.Context, query string, limit int) ([]models.Match, error)
	List(ctx context.Context) ([]models.Entry, error)
	Delete(ctx context.Context, ids []string) (int, error)
}

// Answerer answers a question from retrieved entries.
type Answerer interface {
	Chat(ctx context.Context, query string, matches []models.Match) (string, error)
	ChatStream(ctx context.Context, query string, matches []models.Match) <-chan string
}
