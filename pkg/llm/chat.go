package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/xhad/reelindex/internal/models"
)

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
}

// ChatEngine is an engine that uses an LLM to answer questions over stored entries.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewChatEngine creates a new ChatEngine with the given configuration.
func NewChatEngine(model llms.Model, config ChatConfig) (*ChatEngine, error) {
	if model == nil {
		return nil, fmt.Errorf("chat engine needs a model")
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a helpful assistant with access to descriptions of movie posters and pages from a ranked movie list. Answer questions based on this context."
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = "\nRelevant entries:\n%s\n\nQuestion: %s"
	}

	return &ChatEngine{
		config: config,
		llm:    model,
	}, nil
}

func (ce *ChatEngine) messages(query string, matches []models.Match) []llms.MessageContent {
	var contextBuilder strings.Builder
	for _, m := range matches {
		contextBuilder.WriteString(fmt.Sprintf("Source: %s (%s)\n%s\n\n", m.Metadata.File, m.Metadata.Source, m.Document))
	}

	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(ce.config.ContextTemplate, contextBuilder.String(), query)),
	}
}

// Chat generates a response based on the query and the matched entries.
func (ce *ChatEngine) Chat(ctx context.Context, query string, matches []models.Match) (string, error) {
	response, err := ce.llm.GenerateContent(ctx, ce.messages(query, matches),
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithTemperature(ce.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", ErrEmptyResponse
	}

	return response.Choices[0].Content, nil
}

// ChatStream streams the response in chunks. Failures arrive as a chunk prefixed "Error:".
func (ce *ChatEngine) ChatStream(ctx context.Context, query string, matches []models.Match) <-chan string {
	resultChan := make(chan string)

	go func() {
		defer close(resultChan)

		streamed := false
		response, err := ce.llm.GenerateContent(ctx, ce.messages(query, matches),
			llms.WithMaxTokens(ce.config.MaxTokens),
			llms.WithTemperature(ce.config.Temperature),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) == 0 {
					return nil
				}
				streamed = true
				select {
				case resultChan <- string(chunk):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		send := func(s string) {
			select {
			case resultChan <- s:
			case <-ctx.Done():
			}
		}

		if err != nil {
			send(fmt.Sprintf("Error: %v", err))
			return
		}

		if streamed {
			return
		}

		// some providers ignore the streaming callback
		if response == nil {
			send("Error: No response from LLM")
			return
		}
		for _, choice := range response.Choices {
			if choice != nil && choice.Content != "" {
				send(choice.Content)
			}
		}
	}()

	return resultChan
}

// FormatSources formats the matched entries for citation.
func FormatSources(matches []models.Match) string {
	var sources []string
	seen := make(map[string]bool)

	for _, m := range matches {
		if !seen[m.Metadata.File] {
			sources = append(sources, fmt.Sprintf("%s (%s)", m.Metadata.File, m.Metadata.Source))
			seen[m.Metadata.File] = true
		}
	}

	if len(sources) == 0 {
		return ""
	}

	return fmt.Sprintf("\nSources:\n%s", strings.Join(sources, "\n"))
}
