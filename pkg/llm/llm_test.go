package llm_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/pkg/llm"
)

type fakeModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	response *llms.ContentResponse
	stream   []string
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.opts = llms.CallOptions{}
	for _, opt := range options {
		opt(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.opts.StreamingFunc != nil {
		for _, chunk := range f.stream {
			if err := f.opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}
	return f.response, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func textResponse(s string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s}}}
}

func TestNewModel(t *testing.T) {
	model, err := llm.NewModel(llm.ProviderConfig{Provider: "openai", Model: "gpt-4o", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, model)

	model, err = llm.NewModel(llm.ProviderConfig{Provider: "ollama", Model: "llava", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, model)

	_, err = llm.NewModel(llm.ProviderConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestDescribeOpenAI(t *testing.T) {
	model := &fakeModel{response: textResponse("  A neon-lit city in the rain. Rank 3.  ")}
	d, err := llm.NewDescriber(model, llm.DescriberConfig{Provider: "openai"})
	require.NoError(t, err)

	image := []byte{0x89, 'P', 'N', 'G'}
	summary, err := d.Describe(context.Background(), image, "image/png", "3. Blade Runner (1982)")
	require.NoError(t, err)
	assert.Equal(t, "A neon-lit city in the rain. Rank 3.", summary)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "You are an expert in movies and TV show posters."}, model.messages[0].Parts[0])

	human := model.messages[1]
	assert.Equal(t, llms.ChatMessageTypeHuman, human.Role)
	require.Len(t, human.Parts, 2)

	text, ok := human.Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(text.Text, "\nThe title of this movie is: 3. Blade Runner (1982)"))

	img, ok := human.Parts[1].(llms.ImageURLContent)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(image), img.URL)

	assert.Equal(t, 15000, model.opts.MaxTokens)
	assert.Equal(t, 0.0, model.opts.Temperature)
}

func TestDescribeOllamaSendsBinary(t *testing.T) {
	model := &fakeModel{response: textResponse("poster")}
	d, err := llm.NewDescriber(model, llm.DescriberConfig{Provider: "ollama", MaxTokens: 500, Temperature: 0.1})
	require.NoError(t, err)

	_, err = d.Describe(context.Background(), []byte("jpeg"), "", "1. Alien (1979)")
	require.NoError(t, err)

	part, ok := model.messages[1].Parts[1].(llms.BinaryContent)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", part.MIMEType)
	assert.Equal(t, []byte("jpeg"), part.Data)
	assert.Equal(t, 500, model.opts.MaxTokens)
}

func TestDescribeErrors(t *testing.T) {
	d, err := llm.NewDescriber(&fakeModel{err: errors.New("connection refused")}, llm.DescriberConfig{})
	require.NoError(t, err)
	_, err = d.Describe(context.Background(), []byte("x"), "image/png", "t")
	assert.ErrorContains(t, err, "connection refused")

	d, err = llm.NewDescriber(&fakeModel{response: &llms.ContentResponse{}}, llm.DescriberConfig{})
	require.NoError(t, err)
	_, err = d.Describe(context.Background(), []byte("x"), "image/png", "t")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	d, err = llm.NewDescriber(&fakeModel{response: textResponse(" \n ")}, llm.DescriberConfig{})
	require.NoError(t, err)
	_, err = d.Describe(context.Background(), []byte("x"), "image/png", "t")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = llm.NewDescriber(&fakeModel{}, llm.DescriberConfig{Temperature: 5})
	assert.Error(t, err)
	_, err = llm.NewDescriber(nil, llm.DescriberConfig{})
	assert.Error(t, err)
}

func TestImageMIMEType(t *testing.T) {
	assert.Equal(t, "image/png", llm.ImageMIMEType("25.png"))
	assert.Equal(t, "image/jpeg", llm.ImageMIMEType("24.JPG"))
	assert.Equal(t, "image/jpeg", llm.ImageMIMEType("23.jpeg"))
	assert.Equal(t, "image/jpeg", llm.ImageMIMEType("poster"))
}

var matches = []models.Match{
	{
		Entry: models.Entry{
			ID:       "a",
			Document: "25.png: A poster of an astronaut tumbling through space.",
			Metadata: models.Metadata{File: "25.png", Source: "25. Gravity (2013)", Type: models.TypeImage},
		},
		Score: 0.91,
	},
	{
		Entry: models.Entry{
			ID:       "b",
			Document: "25. Gravity (2013)",
			Metadata: models.Metadata{File: "page_2.txt", Source: "Page 2", Type: models.TypePage},
		},
		Score: 0.84,
	},
}

func TestChat(t *testing.T) {
	model := &fakeModel{response: textResponse("Gravity is ranked 25th.")}
	engine, err := llm.NewChatEngine(model, llm.ChatConfig{Temperature: 0.5, MaxTokens: 1000})
	require.NoError(t, err)

	answer, err := engine.Chat(context.Background(), "Which film is ranked 25th?", matches)
	require.NoError(t, err)
	assert.Equal(t, "Gravity is ranked 25th.", answer)

	human, ok := model.messages[1].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Contains(t, human.Text, "Source: 25.png (25. Gravity (2013))")
	assert.Contains(t, human.Text, "Question: Which film is ranked 25th?")
	assert.Equal(t, 1000, model.opts.MaxTokens)
}

func TestChatStream(t *testing.T) {
	model := &fakeModel{stream: []string{"Gravity ", "is 25th."}, response: textResponse("Gravity is 25th.")}
	engine, err := llm.NewChatEngine(model, llm.ChatConfig{})
	require.NoError(t, err)

	var chunks []string
	for chunk := range engine.ChatStream(context.Background(), "rank?", matches) {
		chunks = append(chunks, chunk)
	}
	assert.Equal(t, []string{"Gravity ", "is 25th."}, chunks)

	// a model that ignores the callback still yields its choices
	model = &fakeModel{response: textResponse("whole answer")}
	engine, err = llm.NewChatEngine(model, llm.ChatConfig{})
	require.NoError(t, err)
	chunks = nil
	for chunk := range engine.ChatStream(context.Background(), "rank?", nil) {
		chunks = append(chunks, chunk)
	}
	assert.Equal(t, []string{"whole answer"}, chunks)

	model = &fakeModel{err: errors.New("boom")}
	engine, err = llm.NewChatEngine(model, llm.ChatConfig{})
	require.NoError(t, err)
	chunks = nil
	for chunk := range engine.ChatStream(context.Background(), "rank?", nil) {
		chunks = append(chunks, chunk)
	}
	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0], "Error:"))
}

func TestFormatSources(t *testing.T) {
	assert.Equal(t, "", llm.FormatSources(nil))
	assert.Equal(t, "\nSources:\n25.png (25. Gravity (2013))\npage_2.txt (Page 2)", llm.FormatSources(append(matches, matches[0])))
}

type fakeEmbeddingClient struct {
	calls int
}

func (f *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func TestEmbedder(t *testing.T) {
	client := &fakeEmbeddingClient{}
	emb, err := llm.NewEmbedderFromClient(client, llm.EmbedderConfig{BatchSize: 2})
	require.NoError(t, err)

	vectors, err := emb.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, vectors, 5)
	for i, v := range vectors {
		assert.Equal(t, []float32{float32(i + 1), 1}, v)
	}

	query, err := emb.EmbedQuery(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1}, query)
	assert.Greater(t, client.calls, 1)
}

func TestNewEmbedderWithConfig(t *testing.T) {
	emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", emb.Config.Model)

	emb, err = llm.NewEmbedderWithConfig(llm.EmbedderConfig{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", emb.Config.Model)

	_, err = llm.NewEmbedderWithConfig(llm.EmbedderConfig{Provider: "bogus"})
	assert.Error(t, err)
}
