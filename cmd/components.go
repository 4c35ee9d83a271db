package cmd

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/xhad/reelindex/internal/types"
	"github.com/xhad/reelindex/pkg/llm"
	"github.com/xhad/reelindex/pkg/store"
)

func openBackend(ctx context.Context) (types.Backend, error) {
	backend, err := store.Open(ctx, store.Config{
		Backend:    cfg.Store.Backend,
		Dir:        cfg.Store.Dir,
		ConnString: cfg.Store.URL,
		TableName:  cfg.Store.TableName,
		VectorDim:  cfg.Store.VectorDim,
		BatchSize:  cfg.Store.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	return backend, nil
}

func openCollection(ctx context.Context) (*store.Collection, error) {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		BatchSize: cfg.Embedding.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	backend, err := openBackend(ctx)
	if err != nil {
		return nil, err
	}

	return store.NewCollection(backend, embedder, store.CollectionConfig{
		AppendOnly: cfg.Store.AppendOnly,
		BatchSize:  cfg.Store.BatchSize,
	}), nil
}

func newModel(model string) (llms.Model, error) {
	return llm.NewModel(llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		Model:    model,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
	})
}

func newChatEngine() (*llm.ChatEngine, error) {
	model, err := newModel(cfg.Chat.Model)
	if err != nil {
		return nil, err
	}
	chatEngine, err := llm.NewChatEngine(model, llm.ChatConfig{
		Temperature: *cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat engine: %w", err)
	}
	return chatEngine, nil
}
