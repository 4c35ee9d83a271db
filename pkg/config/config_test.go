package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OLLAMA_BASE_URL", "DATABASE_URL", "REELINDEX_STORE_DIR"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "openai"
  api_key: "sk-test"
  model: "gpt-4o-mini"
  max_tokens: 1000
  temperature: 0.2

store:
  backend: "pgvector"
  url: "postgres://localhost:5432/test"
  table_name: "test_summaries"
  vector_dim: 768
  append_only: true

extractor:
  pdf_path: "ranking.pdf"
  min_dimension: 500
  pairing: "rank"

pages:
  chunk_size: 800
  chunk_overlap: 100

chat:
  temperature: 0
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.2, config.LLM.Temperature)
	assert.Equal(t, "https://api.openai.com/v1", config.LLM.BaseURL)
	assert.Equal(t, "sk-test", config.Embedding.APIKey)
	assert.Equal(t, "text-embedding-3-small", config.Embedding.Model)
	assert.Equal(t, BackendPGVector, config.Store.Backend)
	assert.Equal(t, "test_summaries", config.Store.TableName)
	assert.Equal(t, 768, config.Store.VectorDim)
	assert.True(t, config.Store.AppendOnly)
	assert.Equal(t, "ranking.pdf", config.Extractor.PDFPath)
	assert.Equal(t, 500, config.Extractor.MinDimension)
	assert.Equal(t, 26, config.Extractor.RankCeiling)
	assert.Equal(t, PairingRank, config.Extractor.Pairing)
	assert.Equal(t, 100, config.Pages.ChunkOverlap)
	require.NotNil(t, config.Chat.Temperature)
	assert.Equal(t, 0.0, *config.Chat.Temperature)
	assert.Empty(t, config.Validate())
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	config := getDefaultConfig()

	assert.Equal(t, ProviderOpenAI, config.LLM.Provider)
	assert.Equal(t, "gpt-4o", config.LLM.Model)
	assert.Equal(t, 15000, config.LLM.MaxTokens)
	assert.Equal(t, 0.0, config.LLM.Temperature)
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, "chroma", config.Store.Dir)
	assert.Equal(t, 1536, config.Store.VectorDim)
	assert.Equal(t, "extracted_images", config.Extractor.OutputDir)
	assert.Equal(t, 600, config.Extractor.MinDimension)
	assert.Equal(t, PairingPositional, config.Extractor.Pairing)
	assert.False(t, config.Extractor.IncludeCover)
	assert.Equal(t, []string{".png", ".jpg", ".jpeg"}, config.Summarizer.Extensions)
	assert.Equal(t, 0, config.Pages.ChunkSize)
	require.NotNil(t, config.Chat.Temperature)
	assert.Equal(t, 0.7, *config.Chat.Temperature)

	// without a key the openai provider cannot run
	errs := config.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "llm.api_key", errs[0].Field)
}

func TestOllamaDefaults(t *testing.T) {
	clearEnv(t)

	config := &Config{LLM: LLMConfig{Provider: ProviderOllama}}
	applyDefaults(config)

	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "llava", config.LLM.Model)
	assert.Equal(t, ProviderOllama, config.Embedding.Provider)
	assert.Equal(t, "http://localhost:11434", config.Embedding.BaseURL)
	assert.Equal(t, "nomic-embed-text", config.Embedding.Model)
	assert.Equal(t, 768, config.Store.VectorDim)
	assert.Empty(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) { c.LLM.APIKey = "sk-test" },
		},
		{
			name: "invalid llm",
			mutate: func(c *Config) {
				c.LLM.APIKey = "sk-test"
				c.LLM.BaseURL = "invalid-url"
				c.LLM.MaxTokens = 50000
				c.LLM.Temperature = 3.0
			},
			errorMessages: []string{
				"llm.base_url: invalid base URL",
				"llm.max_tokens: max_tokens must be between 1 and 16384",
				"llm.temperature: temperature must be between 0 and 2",
			},
		},
		{
			name: "pgvector without url",
			mutate: func(c *Config) {
				c.LLM.APIKey = "sk-test"
				c.Store.Backend = BackendPGVector
				c.Store.VectorDim = -1
			},
			errorMessages: []string{
				"store.url: invalid database URL",
				"store.vector_dim: vector_dim must be positive",
			},
		},
		{
			name: "invalid extractor, pages and chat",
			mutate: func(c *Config) {
				c.LLM.APIKey = "sk-test"
				c.Extractor.RankCeiling = 1
				c.Extractor.Pairing = "diagonal"
				c.Pages.ChunkSize = 100
				c.Pages.ChunkOverlap = 100
				tooHot := 2.5
				c.Chat.Temperature = &tooHot
			},
			errorMessages: []string{
				"extractor.rank_ceiling: rank_ceiling must be at least 2",
				"extractor.pairing: pairing must be",
				"pages.chunk_overlap: chunk_overlap must be non-negative and less than chunk_size",
				"chat.temperature: temperature must be between 0 and 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := getDefaultConfig()
			tt.mutate(config)

			errors := config.Validate()
			assert.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				if i < len(errors) {
					assert.Contains(t, errors[i].Error(), msg)
				}
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("REELINDEX_STORE_DIR", "/tmp/vectors")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "sk-env", config.LLM.APIKey)
	assert.Equal(t, "postgres://env-db:5432/test", config.Store.URL)
	assert.Equal(t, "/tmp/vectors", config.Store.Dir)
}

func TestOllamaBaseURLOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	t.Setenv("OPENAI_BASE_URL", "https://proxy.example.com/v1")

	config := &Config{LLM: LLMConfig{Provider: ProviderOllama}}
	mergeWithEnv(config)
	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)

	config = &Config{}
	mergeWithEnv(config)
	assert.Equal(t, "https://proxy.example.com/v1", config.LLM.BaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "REELINDEX_DOTENV_TEST"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	// missing file is fine
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(key+"=from-dotenv\n"), 0644))
	require.NoError(t, LoadDotEnv(envPath))
	assert.Equal(t, "from-dotenv", os.Getenv(key))
}
