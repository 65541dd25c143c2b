package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIClient implements the Client interface using the OpenAI API or any
// OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	config Config
	model  string
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(apiKey string, config Config) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		config: config,
		model:  model,
	}
}

func (c *OpenAIClient) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if c.config.Temperature != nil {
		req.Temperature = *c.config.Temperature
	}
	if c.config.MaxTokens != nil {
		req.MaxTokens = *c.config.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate sends a system/user prompt pair and returns the response text.
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	content, err := c.chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return RemoveThinkTags(content), nil
}

// GenerateStructured sends a prompt pair and decodes the JSON-shaped response
// into out, repairing almost-JSON output before decoding.
func (c *OpenAIClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	content, err := c.chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	return DecodeStructured(content, out)
}

// Close implements Client.
func (c *OpenAIClient) Close() error {
	return nil
}
