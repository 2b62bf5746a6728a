package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Low temperature keeps SQL and JSON output deterministic enough to parse.
const geminiTemperature = 0.1

// Options configures the client constructed by New.
type Options struct {
	Provider       string
	APIKey         string
	Model          string
	EmbeddingModel string
}

// GeminiClient implements Completer and Embedder on top of the Google
// generative AI SDK. It is safe for concurrent use; the underlying client
// handles its own connection management.
type GeminiClient struct {
	client         *genai.Client
	modelName      string
	embeddingModel string
}

// New resolves the configured provider and returns the matching client.
// Today Gemini is the only backend; any other name fails immediately.
func New(ctx context.Context, opts Options) (*GeminiClient, error) {
	provider, err := ParseProvider(opts.Provider)
	if err != nil {
		return nil, err
	}
	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey, opts.Model, opts.EmbeddingModel)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, opts.Provider)
	}
}

func NewGeminiClient(ctx context.Context, apiKey, model, embeddingModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{
		client:         client,
		modelName:      model,
		embeddingModel: embeddingModel,
	}, nil
}

func (c *GeminiClient) Close() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// Complete sends a single prompt and returns the concatenated text parts of
// the first candidate.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)

	temp := float32(geminiTemperature)
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}

	return strings.TrimSpace(text.String()), nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	em := c.client.EmbeddingModel(c.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}
