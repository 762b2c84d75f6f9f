package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config contains all runtime settings for the assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// History storage: postgres when DatabaseURL is set, else files.
	DatabaseURL string
	HistoryDir  string

	// System persona prepended to every completion call. Fixed per process,
	// never per request.
	SystemPrompt string

	CompletionMode    string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	CompletionHTTPURL string
	CompletionRetries int

	TranscriberMode  string
	WhisperAPIModel  string
	WhisperCLI       string
	WhisperModelPath string
	WhisperLanguage  string
	WhisperThreads   int

	MaxUploadBytes int64
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8002"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "genie"),
		DatabaseURL:       stringsTrimSpace("DATABASE_URL"),
		HistoryDir:        envOrDefault("HISTORY_DIR", "data/chats"),
		SystemPrompt:      stringsTrimSpace("APP_SYSTEM_PROMPT"),
		CompletionMode:    envOrDefault("COMPLETION_MODE", "auto"),
		OpenAIAPIKey:      stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:     stringsTrimSpace("OPENAI_BASE_URL"),
		OpenAIModel:       stringsTrimSpace("OPENAI_MODEL"),
		CompletionHTTPURL: stringsTrimSpace("COMPLETION_HTTP_URL"),
		CompletionRetries: 2,
		TranscriberMode:   envOrDefault("TRANSCRIBER_MODE", "auto"),
		WhisperAPIModel:   stringsTrimSpace("WHISPER_API_MODEL"),
		WhisperCLI:        envOrDefault("LOCAL_WHISPER_CLI", "whisper-cli"),
		WhisperModelPath:  envOrDefault("LOCAL_WHISPER_MODEL_PATH", ".models/whisper/ggml-base.bin"),
		WhisperLanguage:   envOrDefault("LOCAL_WHISPER_LANGUAGE", "en"),
		WhisperThreads:    0,
		ShutdownTimeout:   15 * time.Second,
		MaxUploadBytes:    20 << 20,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionRetries, err = intFromEnv("COMPLETION_RETRIES", cfg.CompletionRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.WhisperThreads, err = intFromEnv("LOCAL_WHISPER_THREADS", cfg.WhisperThreads)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxUploadBytes, err = int64FromEnv("APP_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	if err != nil {
		return Config{}, err
	}

	if cfg.CompletionRetries < 0 {
		return Config{}, fmt.Errorf("COMPLETION_RETRIES must be >= 0")
	}
	if cfg.WhisperThreads < 0 {
		return Config{}, fmt.Errorf("LOCAL_WHISPER_THREADS must be >= 0")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("APP_MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return trimSpace(os.Getenv(key))
}

func trimSpace(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\n' || v[0] == '\t' || v[0] == '\r') {
		v = v[1:]
	}
	for len(v) > 0 {
		c := v[len(v)-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			v = v[:len(v)-1]
			continue
		}
		break
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func int64FromEnv(key string, fallback int64) (int64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
