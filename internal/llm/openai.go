package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ent0n29/genie/internal/prompt"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
// (OpenAI itself, Groq, OpenRouter, a local server) selected via BaseURL.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		conf.BaseURL = cfg.BaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(conf),
		model:  model,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 503 {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
