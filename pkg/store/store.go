// Package store persists summary records with their embeddings and serves similarity search.
package store

import (
	"context"
	"fmt"

	"github.com/xhad/reelindex/internal/types"
)

const (
	BackendSQLite   = "sqlite"
	BackendPGVector = "pgvector"
)

type Config struct {
	Backend    string
	Dir        string // sqlite
	ConnString string // pgvector
	TableName  string
	VectorDim  int
	BatchSize  int
}

// Open returns the configured backend, creating its storage on first use.
func Open(ctx context.Context, config Config) (types.Backend, error) {
	switch config.Backend {
	case BackendSQLite, "":
		return NewSQLite(ctx, SQLiteConfig{
			Dir:       config.Dir,
			TableName: config.TableName,
			VectorDim: config.VectorDim,
		})
	case BackendPGVector:
		return NewWithConfig(ctx, VectorStoreConfig{
			ConnString: config.ConnString,
			TableName:  config.TableName,
			VectorDim:  config.VectorDim,
			BatchSize:  config.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", config.Backend)
	}
}
