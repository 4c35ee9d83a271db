package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/internal/types"
)

var ErrEmbeddingMismatch = errors.New("embedder returned a different number of vectors")

// recordNamespace seeds the deterministic ids of keyed mode.
var recordNamespace = uuid.MustParse("6f1c2a8e-43b1-4d0e-9a57-1f0a5e3c9b12")

type CollectionConfig struct {
	// AppendOnly assigns a fresh random id to every record, so re-runs add duplicates.
	AppendOnly bool
	BatchSize  int
}

// Collection embeds summary records and hands them to a Backend.
type Collection struct {
	config   CollectionConfig
	backend  types.Backend
	embedder types.Embedder
}

func NewCollection(backend types.Backend, embedder types.Embedder, config CollectionConfig) *Collection {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &Collection{
		config:   config,
		backend:  backend,
		embedder: embedder,
	}
}

// RecordID is the keyed-mode id of a record: stable across runs for the same type and file.
func RecordID(r models.SummaryRecord) string {
	return uuid.NewSHA1(recordNamespace, []byte(r.Type+"|"+r.File)).String()
}

func (c *Collection) id(r models.SummaryRecord) string {
	if c.config.AppendOnly {
		return uuid.NewString()
	}
	return RecordID(r)
}

// Add embeds and stores records, returning their ids in input order.
func (c *Collection) Add(ctx context.Context, records []models.SummaryRecord) ([]string, error) {
	ids := make([]string, 0, len(records))

	for start := 0; start < len(records); start += c.config.BatchSize {
		batch := records[start:min(start+c.config.BatchSize, len(records))]

		docs := make([]string, len(batch))
		for i, r := range batch {
			docs[i] = sanitizeUTF8(r.Text)
		}

		vectors, err := c.embedder.EmbedDocuments(ctx, docs)
		if err != nil {
			return ids, fmt.Errorf("failed to create embeddings: %w", err)
		}
		if len(vectors) != len(docs) {
			return ids, fmt.Errorf("%w: %d documents, %d vectors", ErrEmbeddingMismatch, len(docs), len(vectors))
		}

		entries := make([]models.Entry, len(batch))
		for i, r := range batch {
			entries[i] = models.Entry{
				ID:       c.id(r),
				Document: docs[i],
				Metadata: models.Metadata{
					File:   sanitizeUTF8(r.File),
					Source: sanitizeUTF8(r.Source),
					Type:   r.Type,
				},
				Embedding: vectors[i],
			}
		}

		if err := c.backend.Upsert(ctx, entries); err != nil {
			return ids, err
		}
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
	}

	return ids, nil
}

func (c *Collection) Search(ctx context.Context, query string, limit int) ([]models.Match, error) {
	vec, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return c.backend.Query(ctx, vec, limit)
}

func (c *Collection) List(ctx context.Context) ([]models.Entry, error) {
	return c.backend.List(ctx)
}

func (c *Collection) Delete(ctx context.Context, ids []string) (int, error) {
	return c.backend.Delete(ctx, ids)
}

func (c *Collection) Close() {
	c.backend.Close()
}
