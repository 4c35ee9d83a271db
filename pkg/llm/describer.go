package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const (
	defaultSystemPrompt = "You are an expert in movies and TV show posters."
	defaultTaskPrompt   = "Examine the image carefully and describe the movie or TV show poster from the image and its title and add the rank of the movie in the description."
)

// ErrEmptyResponse is returned when the model answers without any choices or with blank content.
var ErrEmptyResponse = errors.New("model returned no content")

// DescriberConfig represents the configuration for a poster describer.
type DescriberConfig struct {
	Provider     string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
	TaskPrompt   string
}

// PosterDescriber asks a multimodal model to describe a poster image.
type PosterDescriber struct {
	config DescriberConfig
	llm    llms.Model
}

func NewDescriber(model llms.Model, config DescriberConfig) (*PosterDescriber, error) {
	if model == nil {
		return nil, errors.New("describer needs a model")
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 15000
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = defaultSystemPrompt
	}
	if config.TaskPrompt == "" {
		config.TaskPrompt = defaultTaskPrompt
	}

	return &PosterDescriber{
		config: config,
		llm:    model,
	}, nil
}

// Describe sends the poster and its title to the model and returns the first choice.
func (d *PosterDescriber) Describe(ctx context.Context, image []byte, mimeType, title string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	var imagePart llms.ContentPart
	if d.config.Provider == ProviderOllama {
		imagePart = llms.BinaryPart(mimeType, image)
	} else {
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
		imagePart = llms.ImageURLPart(dataURL)
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, d.config.SystemPrompt),
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf("%s\nThe title of this movie is: %s", d.config.TaskPrompt, title)),
				imagePart,
			},
		},
	}

	response, err := d.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(d.config.MaxTokens),
		llms.WithTemperature(d.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("describe error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", ErrEmptyResponse
	}

	summary := strings.TrimSpace(response.Choices[0].Content)
	if summary == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}

// ImageMIMEType guesses the MIME type of an image from its file name.
func ImageMIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
