package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Config controls completion client construction.
type Config struct {
	Mode    string // auto|openai|http|mock
	APIKey  string
	BaseURL string
	Model   string
	HTTPURL string

	RetryAttempts int
}

// New builds the configured completion client, wrapped with bounded retry.
func New(cfg Config) (Client, error) {
	inner, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return WithRetry(inner, RetryConfig{Attempts: cfg.RetryAttempts}), nil
}

func newBase(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAIClient(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
		}
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewHTTPClient(cfg.HTTPURL), nil
		}
		return NewMockClient("mock completion"), nil
	case "openai":
		return NewOpenAIClient(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("completion HTTP url is required for http mode")
		}
		return NewHTTPClient(cfg.HTTPURL), nil
	case "mock":
		return NewMockClient("mock completion"), nil
	default:
		return nil, fmt.Errorf("unsupported completion mode %q", cfg.Mode)
	}
}
