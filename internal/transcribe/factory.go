package transcribe

import (
	"fmt"
	"strings"
)

// Config controls transcriber construction.
type Config struct {
	Mode string // auto|openai|cli|mock

	APIKey  string
	BaseURL string
	Model   string

	CLIPath      string
	CLIModelPath string
	CLILanguage  string
	CLIThreads   int
}

func New(cfg Config) (Transcriber, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAITranscriber(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
		}
		if t, err := NewCLITranscriber(CLIConfig{
			Path:      cfg.CLIPath,
			ModelPath: cfg.CLIModelPath,
			Language:  cfg.CLILanguage,
			Threads:   cfg.CLIThreads,
		}); err == nil {
			return t, nil
		}
		return &Mock{Text: "mock transcript"}, nil
	case "openai":
		return NewOpenAITranscriber(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	case "cli":
		return NewCLITranscriber(CLIConfig{
			Path:      cfg.CLIPath,
			ModelPath: cfg.CLIModelPath,
			Language:  cfg.CLILanguage,
			Threads:   cfg.CLIThreads,
		})
	case "mock":
		return &Mock{Text: "mock transcript"}, nil
	default:
		return nil, fmt.Errorf("unsupported transcriber mode %q", cfg.Mode)
	}
}
