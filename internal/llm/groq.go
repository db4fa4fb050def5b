package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const groqCooldown = 500 * time.Millisecond

// GroqClient uses Groq's OpenAI-compatible chat completion endpoint.
// It never retries.
type GroqClient struct {
	client *openai.Client
	model  string
	opts   Options
}

func NewGroqClient(baseURL, apiKey, model string, opts Options) *GroqClient {
	opts = opts.withDefaults()
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = opts.HTTPClient
	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		opts:   opts,
	}
}

func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		if code := openAIStatus(err); code != 0 {
			return "", &StatusError{Provider: ProviderGroq, Code: code, Err: err}
		}
		return "", fmt.Errorf("groq completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content

	// The reply is kept even if ctx ends during the cooldown.
	_ = c.opts.Sleep(ctx, groqCooldown)
	return text, nil
}

// openAIStatus digs the HTTP status out of go-openai's error types.
func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
