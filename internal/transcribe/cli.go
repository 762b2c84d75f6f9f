package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

type CLIConfig struct {
	Path      string // whisper.cpp whisper-cli binary
	ModelPath string
	Language  string
	Threads   int
}

// CLITranscriber shells out to a local whisper.cpp build. Useful when no
// transcription API credential is available.
type CLITranscriber struct {
	cfg CLIConfig
}

func NewCLITranscriber(cfg CLIConfig) (*CLITranscriber, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("whisper CLI path is required")
	}
	if _, err := exec.LookPath(cfg.Path); err != nil {
		return nil, fmt.Errorf("whisper CLI not found: %w", err)
	}
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, fmt.Errorf("whisper model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper model not found: %s", cfg.ModelPath)
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "en"
	}
	return &CLITranscriber{cfg: cfg}, nil
}

func (t *CLITranscriber) Transcribe(ctx context.Context, wavPath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "genie-whisper-*")
	if err != nil {
		return "", &ServiceError{Detail: err.Error()}
	}
	defer os.RemoveAll(tmpDir)
	outPrefix := filepath.Join(tmpDir, "out")

	// whisper.cpp CLI flag set varies slightly across builds; keep this conservative.
	args := []string{
		"-m", t.cfg.ModelPath,
		"-f", wavPath,
		"-l", t.cfg.Language,
		"-otxt",
		"-of", outPrefix,
		"-nt",
	}
	if t.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(t.cfg.Threads))
	}

	cmd := exec.CommandContext(ctx, t.cfg.Path, args...)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 4<<10 {
			detail = strings.TrimSpace(detail[len(detail)-(4<<10):])
		}
		if detail == "" {
			detail = err.Error()
		}
		return "", &ServiceError{Detail: detail}
	}

	b, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return "", &ServiceError{Detail: err.Error()}
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}
