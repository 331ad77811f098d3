package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient implements Client on the google.golang.org/genai SDK.
type GenAIClient struct {
	client *genai.Client
	config *Config
}

// NewGenAIClient creates a client for the Gemini API backend.
func NewGenAIClient(ctx context.Context, config *Config, apiKey string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{client: client, config: config}, nil
}

// GenerateContent generates free text for the request
func (c *GenAIClient) GenerateContent(ctx context.Context, req Request) (string, error) {
	return c.generate(ctx, req, "")
}

// GenerateJSON generates JSON content for the request
func (c *GenAIClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	text, err := c.generate(ctx, req, "application/json")
	if err != nil {
		return "", err
	}
	return stripFences(strings.TrimSpace(text)), nil
}

func (c *GenAIClient) generate(ctx context.Context, req Request, mimeType string) (string, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", req.Tier)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.config.Temperature),
		ResponseMIMEType: mimeType,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", &APICallError{Provider: ProviderGenAI, Model: modelName, Cause: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &EmptyResponseError{Reason: "no text parts in response"}
	}
	return text, nil
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the genai client holds no long-lived connections.
func (c *GenAIClient) Close() error {
	return nil
}
