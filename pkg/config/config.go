package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	BackendSQLite   = "sqlite"
	BackendPGVector = "pgvector"

	PairingRank       = "rank"
	PairingPositional = "positional"
)

type LLMConfig struct {
	Provider          string  `yaml:"provider"`
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	SystemPrompt      string  `yaml:"system_prompt"`
	TaskPrompt        string  `yaml:"task_prompt"`
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

type StoreConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	URL        string `yaml:"url"`
	TableName  string `yaml:"table_name"`
	VectorDim  int    `yaml:"vector_dim"`
	BatchSize  int    `yaml:"batch_size"`
	AppendOnly bool   `yaml:"append_only"`
}

type ExtractorConfig struct {
	PDFPath         string `yaml:"pdf_path"`
	OutputDir       string `yaml:"output_dir"`
	MinDimension    int    `yaml:"min_dimension"`
	RankCeiling     int    `yaml:"rank_ceiling"`
	IncludeCover    bool   `yaml:"include_cover"`
	Pairing         string `yaml:"pairing"`
	ImageTitlesPath string `yaml:"image_titles_path"`
	PageTextsPath   string `yaml:"page_texts_path"`
}

type SummarizerConfig struct {
	Extensions []string `yaml:"extensions"`
}

type PagesConfig struct {
	ChunkSize           int  `yaml:"chunk_size"`
	ChunkOverlap        int  `yaml:"chunk_overlap"`
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`
}

type ChatConfig struct {
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"` // nil means 0.7; an explicit 0 is kept
	SearchLimit int      `yaml:"search_limit"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the single configuration value handed to every stage.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Store      StoreConfig      `yaml:"store"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Pages      PagesConfig      `yaml:"pages"`
	Chat       ChatConfig       `yaml:"chat"`
	Server     ServerConfig     `yaml:"server"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"reelindex.yaml",
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/reelindex/config.yaml"),
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() *Config {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = ProviderOpenAI
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = defaultBaseURL(config.LLM.Provider)
	}
	if config.LLM.Model == "" {
		if config.LLM.Provider == ProviderOllama {
			config.LLM.Model = "llava"
		} else {
			config.LLM.Model = "gpt-4o"
		}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 15000
	}
	if config.LLM.RequestsPerSecond == 0 {
		config.LLM.RequestsPerSecond = 1
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = config.LLM.Provider
	}
	if config.Embedding.BaseURL == "" {
		if config.Embedding.Provider == config.LLM.Provider {
			config.Embedding.BaseURL = config.LLM.BaseURL
		} else {
			config.Embedding.BaseURL = defaultBaseURL(config.Embedding.Provider)
		}
	}
	if config.Embedding.APIKey == "" {
		config.Embedding.APIKey = config.LLM.APIKey
	}
	if config.Embedding.Model == "" {
		if config.Embedding.Provider == ProviderOllama {
			config.Embedding.Model = "nomic-embed-text"
		} else {
			config.Embedding.Model = "text-embedding-3-small"
		}
	}
	if config.Embedding.BatchSize == 0 {
		config.Embedding.BatchSize = 64
	}

	if config.Store.Backend == "" {
		config.Store.Backend = BackendSQLite
	}
	if config.Store.Dir == "" {
		config.Store.Dir = "chroma"
	}
	if config.Store.TableName == "" {
		config.Store.TableName = "summaries"
	}
	if config.Store.VectorDim == 0 {
		if config.Embedding.Provider == ProviderOllama {
			config.Store.VectorDim = 768
		} else {
			config.Store.VectorDim = 1536
		}
	}
	if config.Store.BatchSize == 0 {
		config.Store.BatchSize = 100
	}

	if config.Extractor.PDFPath == "" {
		config.Extractor.PDFPath = "The-25-Best-Sci-Fi-Movies-of-All-Time-IGN-1-37.pdf"
	}
	if config.Extractor.OutputDir == "" {
		config.Extractor.OutputDir = "extracted_images"
	}
	if config.Extractor.MinDimension == 0 {
		config.Extractor.MinDimension = 600
	}
	if config.Extractor.RankCeiling == 0 {
		config.Extractor.RankCeiling = 26
	}
	if config.Extractor.Pairing == "" {
		config.Extractor.Pairing = PairingPositional
	}
	if config.Extractor.ImageTitlesPath == "" {
		config.Extractor.ImageTitlesPath = "image_titles.json"
	}
	if config.Extractor.PageTextsPath == "" {
		config.Extractor.PageTextsPath = "page_texts.json"
	}

	if len(config.Summarizer.Extensions) == 0 {
		config.Summarizer.Extensions = []string{".png", ".jpg", ".jpeg"}
	}

	if config.Pages.ChunkSize > 0 && config.Pages.ChunkOverlap == 0 {
		config.Pages.ChunkOverlap = config.Pages.ChunkSize / 5
	}

	if config.Chat.Model == "" {
		config.Chat.Model = config.LLM.Model
	}
	if config.Chat.MaxTokens == 0 {
		config.Chat.MaxTokens = 2000
	}
	if config.Chat.Temperature == nil {
		temperature := 0.7
		config.Chat.Temperature = &temperature
	}
	if config.Chat.SearchLimit == 0 {
		config.Chat.SearchLimit = 5
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func defaultBaseURL(provider string) string {
	if provider == ProviderOllama {
		return "http://localhost:11434"
	}
	return "https://api.openai.com/v1"
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && config.LLM.Provider != ProviderOllama {
		config.LLM.BaseURL = baseURL
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && config.LLM.Provider == ProviderOllama {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Store.URL = dbURL
	}
	if dir := os.Getenv("REELINDEX_STORE_DIR"); dir != "" {
		config.Store.Dir = dir
	}
}
