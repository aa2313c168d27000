package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenerationError is the failure value of a generation call. Agents treat
// it as recoverable and turn it into an errored report.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Client is the text-generation capability. Callers bound latency with
// the context they pass in; maxTokens bounds output size (0 = provider
// default).
type Client interface {
	// Generate produces free-form text for the prompt.
	Generate(ctx context.Context, prompt string, tier ModelTier, maxTokens int) (string, error)
	// GenerateJSON produces JSON output for the prompt.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier, maxTokens int) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate produces free-form text for the prompt.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, tier ModelTier, maxTokens int) (string, error) {
	resp, err := c.generate(ctx, prompt, tier, maxTokens, "")
	if err != nil {
		return "", err
	}
	return resp, nil
}

// GenerateJSON produces JSON output for the prompt, with markdown code
// fences stripped.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, maxTokens int) (string, error) {
	text, err := c.generate(ctx, prompt, tier, maxTokens, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, maxTokens int, mimeType string) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", &GenerationError{Message: fmt.Sprintf("no model configured for tier %s", tier)}
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &GenerationError{Message: "failed to generate content", Cause: err}
	}

	return extractTextFromResponse(resp)
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &GenerationError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &GenerationError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &GenerationError{Message: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}
