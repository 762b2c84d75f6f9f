package query

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ent0n29/genie/internal/audio"
	"github.com/ent0n29/genie/internal/extract"
	"github.com/ent0n29/genie/internal/transcribe"
)

// User-visible strings. The display prompt is what gets persisted and
// replayed, so the exact wording is part of the storage contract.
const (
	audioDisplayPrompt      = "Audio file uploaded"
	unrecognizedFallback    = "Could not understand the audio. Please try again."
	serviceErrorFallbackFmt = "Could not reach the speech recognition service; %s"
	documentPromptFmt       = "Document: %s, Question: %s"
	documentInstructionFmt  = "The document content is:\n%s\n\nNow answer this question based on the document: %s"
)

// ErrUnsupportedAudio reports an upload that could not be decoded as audio at
// all. Unlike transcription failures it is the caller's problem and fails
// the request.
var ErrUnsupportedAudio = errors.New("unsupported audio payload")

// normalized is the adapter output the orchestrator consumes: a
// human-readable prompt for the history record and the text actually sent to
// the completion backend. A short-circuiting adapter supplies the final
// answer itself and no completion call happens.
type normalized struct {
	displayPrompt string
	llmInput      string

	shortCircuit bool
	answer       string
}

// adaptText is a pass-through: the question is both the record and the input.
func adaptText(question string) normalized {
	return normalized{displayPrompt: question, llmInput: question}
}

// adaptDocument extracts the document's full text and composes a single-turn
// instruction around it. Prior documents are not carried across turns unless
// their text is resent; that is a deliberate scope limit, not an oversight.
func adaptDocument(ctx context.Context, extractor extract.Extractor, path, filename, question string) (normalized, error) {
	text, err := extractor.ExtractText(ctx, path)
	if err != nil {
		return normalized{}, err
	}
	return normalized{
		displayPrompt: fmt.Sprintf(documentPromptFmt, filename, question),
		llmInput:      fmt.Sprintf(documentInstructionFmt, text, question),
	}, nil
}

// adaptAudio transcodes the upload to the canonical WAV format and
// transcribes it. Transcription failures become the answer directly: the
// interaction is still recorded, the conversation keeps flowing, and no
// completion call is made.
func adaptAudio(ctx context.Context, transcriber transcribe.Transcriber, path string) (normalized, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return normalized{}, fmt.Errorf("read audio payload: %w", err)
	}
	canonical, err := audio.TranscodeToCanonicalWAV(data)
	if err != nil {
		return normalized{}, fmt.Errorf("%w: %v", ErrUnsupportedAudio, err)
	}

	wavPath := filepath.Join(filepath.Dir(path), "canonical_"+uuid.NewString()+".wav")
	if err := os.WriteFile(wavPath, canonical, 0o600); err != nil {
		return normalized{}, fmt.Errorf("write canonical audio: %w", err)
	}
	defer os.Remove(wavPath)

	text, err := transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		if errors.Is(err, transcribe.ErrUnrecognized) {
			return normalized{
				displayPrompt: audioDisplayPrompt,
				shortCircuit:  true,
				answer:        unrecognizedFallback,
			}, nil
		}
		var se *transcribe.ServiceError
		if errors.As(err, &se) {
			return normalized{
				displayPrompt: audioDisplayPrompt,
				shortCircuit:  true,
				answer:        fmt.Sprintf(serviceErrorFallbackFmt, se.Detail),
			}, nil
		}
		return normalized{}, err
	}

	return normalized{displayPrompt: audioDisplayPrompt, llmInput: text}, nil
}
