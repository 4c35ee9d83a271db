package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xhad/reelindex/internal/models"
	_ "modernc.org/sqlite"
)

const DefaultDBName = "reelindex.db"

type SQLiteConfig struct {
	Dir       string
	TableName string
	VectorDim int // 0 accepts any dimension
}

// SQLite keeps entries in a single file under Dir and ranks them by brute-force cosine.
type SQLite struct {
	config SQLiteConfig
	db     *sql.DB
	path   string
}

func NewSQLite(ctx context.Context, config SQLiteConfig) (*SQLite, error) {
	if config.Dir == "" {
		config.Dir = "chroma"
	}
	if config.TableName == "" {
		config.TableName = "summaries"
	}

	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	path := filepath.Join(config.Dir, DefaultDBName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer, as the batch stages assume
	db.SetMaxOpenConns(1)

	s := &SQLite{config: config, db: db, path: path}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			file TEXT,
			source TEXT,
			type TEXT,
			embedding BLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, s.config.TableName)

	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Path returns the database file path
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Upsert(ctx context.Context, entries []models.Entry) error {
	for _, e := range entries {
		if s.config.VectorDim > 0 && len(e.Embedding) != s.config.VectorDim {
			return fmt.Errorf("entry %s has %d dimensions, store expects %d", e.ID, len(e.Embedding), s.config.VectorDim)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, document, file, source, type, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			document = excluded.document,
			file = excluded.file,
			source = excluded.source,
			type = excluded.type,
			embedding = excluded.embedding`,
		s.config.TableName)

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, stmt,
			e.ID,
			e.Document,
			e.Metadata.File,
			e.Metadata.Source,
			e.Metadata.Type,
			encodeVector(e.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns every entry in insertion order.
func (s *SQLite) List(ctx context.Context) ([]models.Entry, error) {
	query := fmt.Sprintf(`SELECT id, document, file, source, type, embedding FROM %s ORDER BY rowid`, s.config.TableName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e    models.Entry
			blob []byte
		)
		if err := rows.Scan(&e.ID, &e.Document, &e.Metadata.File, &e.Metadata.Source, &e.Metadata.Type, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if e.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`, s.config.TableName, placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted entries: %w", err)
	}
	return int(n), nil
}

func (s *SQLite) Query(ctx context.Context, embedding []float32, limit int) ([]models.Match, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return rank(entries, embedding, limit), nil
}

func (s *SQLite) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
