package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if !validProvider(c.LLM.Provider) {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q", c.LLM.Provider),
		})
	}

	if c.LLM.Provider == ProviderOpenAI && c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "OPENAI_API_KEY is required for the openai provider",
		})
	}

	if !validURL(c.LLM.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 16384 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 16384",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.RequestsPerSecond < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.requests_per_second",
			Message: "requests_per_second must not be negative",
		})
	}

	// Validate embedding config
	if !validProvider(c.Embedding.Provider) {
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unknown provider %q", c.Embedding.Provider),
		})
	}

	if c.Embedding.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedding.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate store config
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.Dir == "" {
			errors = append(errors, ValidationError{
				Field:   "store.dir",
				Message: "dir is required for the sqlite backend",
			})
		}
	case BackendPGVector:
		if c.Store.URL == "" || !validURL(c.Store.URL) {
			errors = append(errors, ValidationError{
				Field:   "store.url",
				Message: "invalid database URL",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "store.backend",
			Message: fmt.Sprintf("unknown backend %q", c.Store.Backend),
		})
	}

	if c.Store.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "store.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Store.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "store.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate extractor config
	if c.Extractor.MinDimension < 0 {
		errors = append(errors, ValidationError{
			Field:   "extractor.min_dimension",
			Message: "min_dimension must not be negative",
		})
	}

	if c.Extractor.RankCeiling < 2 {
		errors = append(errors, ValidationError{
			Field:   "extractor.rank_ceiling",
			Message: "rank_ceiling must be at least 2",
		})
	}

	if c.Extractor.Pairing != PairingRank && c.Extractor.Pairing != PairingPositional {
		errors = append(errors, ValidationError{
			Field:   "extractor.pairing",
			Message: fmt.Sprintf("pairing must be %q or %q", PairingRank, PairingPositional),
		})
	}

	// Validate page chunking
	if c.Pages.ChunkSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "pages.chunk_size",
			Message: "chunk_size must not be negative",
		})
	}

	if c.Pages.ChunkSize > 0 && (c.Pages.ChunkOverlap < 0 || c.Pages.ChunkOverlap >= c.Pages.ChunkSize) {
		errors = append(errors, ValidationError{
			Field:   "pages.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if t := c.Chat.Temperature; t != nil && (*t < 0 || *t > 2) {
		errors = append(errors, ValidationError{
			Field:   "chat.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	return errors
}

func validProvider(p string) bool {
	return p == ProviderOpenAI || p == ProviderOllama
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
