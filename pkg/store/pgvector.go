package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/reelindex/internal/models"
)

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// VectorStore is the Postgres backend. Insertion order is kept by the seq column.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "summaries"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // Default for OpenAI embeddings
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			file TEXT,
			source TEXT,
			type TEXT,
			embedding vector(%d),
			created_at TIMESTAMPTZ DEFAULT now()
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx 
		ON %s 
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Upsert writes entries in transactions of BatchSize rows.
func (vs *VectorStore) Upsert(ctx context.Context, entries []models.Entry) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, document, file, source, type, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			file = EXCLUDED.file,
			source = EXCLUDED.source,
			type = EXCLUDED.type,
			embedding = EXCLUDED.embedding`,
		vs.config.TableName)

	for start := 0; start < len(entries); start += vs.config.BatchSize {
		end := min(start+vs.config.BatchSize, len(entries))
		if err := vs.upsertBatch(ctx, stmt, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (vs *VectorStore) upsertBatch(ctx context.Context, stmt string, entries []models.Entry) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if len(e.Embedding) != vs.config.VectorDim {
			return fmt.Errorf("entry %s has %d dimensions, store expects %d", e.ID, len(e.Embedding), vs.config.VectorDim)
		}
		_, err = tx.Exec(ctx, stmt,
			e.ID,
			e.Document,
			e.Metadata.File,
			e.Metadata.Source,
			e.Metadata.Type,
			pgvector.NewVector(e.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (vs *VectorStore) List(ctx context.Context) ([]models.Entry, error) {
	query := fmt.Sprintf(`
		SELECT id, document, file, source, type, embedding
		FROM %s
		ORDER BY seq`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e   models.Entry
			vec pgvector.Vector
		)
		if err := rows.Scan(&e.ID, &e.Document, &e.Metadata.File, &e.Metadata.Source, &e.Metadata.Type, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Embedding = vec.Slice()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (vs *VectorStore) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := vs.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, vs.config.TableName), ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (vs *VectorStore) Query(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = 5
	}

	query := fmt.Sprintf(`
		SELECT id, document, file, source, type, embedding, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(queryEmbedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var (
			m   models.Match
			vec pgvector.Vector
		)
		err := rows.Scan(
			&m.ID,
			&m.Document,
			&m.Metadata.File,
			&m.Metadata.Source,
			&m.Metadata.Type,
			&vec,
			&m.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		m.Embedding = vec.Slice()
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}
