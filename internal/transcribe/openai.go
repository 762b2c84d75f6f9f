package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAITranscriber uses the Whisper transcription API (or any compatible
// endpoint selected via BaseURL).
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

func NewOpenAITranscriber(cfg OpenAIConfig) (*OpenAITranscriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("transcription API key is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		conf.BaseURL = cfg.BaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{
		client: openai.NewClientWithConfig(conf),
		model:  model,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, wavPath string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: wavPath,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &ServiceError{Detail: err.Error()}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}
