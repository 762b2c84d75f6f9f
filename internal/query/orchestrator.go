package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ent0n29/genie/internal/extract"
	"github.com/ent0n29/genie/internal/history"
	"github.com/ent0n29/genie/internal/llm"
	"github.com/ent0n29/genie/internal/observability"
	"github.com/ent0n29/genie/internal/prompt"
	"github.com/ent0n29/genie/internal/transcribe"
)

// StorageWriteError reports that an answer was produced but could not be
// durably recorded. Both facts matter to the caller, so the answer travels
// with the error.
type StorageWriteError struct {
	Answer string
	Err    error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("answer computed but not saved: %v", e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// Orchestrator runs one query end to end: normalize the input, replay the
// session history into a message sequence, call the completion backend and
// persist the new interaction. It holds no per-request state; history is
// re-loaded and re-saved on every call.
type Orchestrator struct {
	store       history.Store
	completions llm.Client
	extractor   extract.Extractor
	transcriber transcribe.Transcriber
	metrics     *observability.Metrics
	persona     string
}

func NewOrchestrator(
	store history.Store,
	completions llm.Client,
	extractor extract.Extractor,
	transcriber transcribe.Transcriber,
	metrics *observability.Metrics,
	persona string,
) *Orchestrator {
	if strings.TrimSpace(persona) == "" {
		persona = prompt.DefaultPersona
	}
	return &Orchestrator{
		store:       store,
		completions: completions,
		extractor:   extractor,
		transcriber: transcriber,
		metrics:     metrics,
		persona:     persona,
	}
}

// QueryText answers a plain text question within a session.
func (o *Orchestrator) QueryText(ctx context.Context, userID, sessionID, question string) (string, error) {
	if err := validateIDs(userID, sessionID); err != nil {
		return "", err
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must not be empty")
	}
	return o.run(ctx, userID, sessionID, "text", adaptText(question))
}

// QueryDocument answers a question about an uploaded document. The file at
// path is request-scoped; the caller owns its cleanup.
func (o *Orchestrator) QueryDocument(ctx context.Context, userID, sessionID, path, filename, question string) (string, error) {
	if err := validateIDs(userID, sessionID); err != nil {
		return "", err
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must not be empty")
	}

	norm, err := adaptDocument(ctx, o.extractor, path, filename, question)
	if err != nil {
		o.countQuery("document", "adapter_error")
		o.countProviderError("extract", err)
		return "", err
	}
	return o.run(ctx, userID, sessionID, "document", norm)
}

// QueryAudio answers a spoken question from an uploaded audio clip. The file
// at path is request-scoped; the caller owns its cleanup.
func (o *Orchestrator) QueryAudio(ctx context.Context, userID, sessionID, path string) (string, error) {
	if err := validateIDs(userID, sessionID); err != nil {
		return "", err
	}

	norm, err := adaptAudio(ctx, o.transcriber, path)
	if err != nil {
		o.countQuery("audio", "adapter_error")
		o.countProviderError("transcribe", err)
		return "", err
	}
	return o.run(ctx, userID, sessionID, "audio", norm)
}

// run executes the shared tail of every modality: load, assemble, complete
// (unless the adapter short-circuited) and record. History is only written
// once an answer exists, so a failed completion leaves the session exactly
// as it was.
func (o *Orchestrator) run(ctx context.Context, userID, sessionID, modality string, norm normalized) (string, error) {
	interactions, err := o.store.Load(ctx, userID, sessionID)
	if err != nil {
		o.countQuery(modality, "history_error")
		return "", err
	}

	answer := norm.answer
	if norm.shortCircuit {
		o.metrics.ShortCircuits.WithLabelValues(modality).Inc()
	} else {
		messages := prompt.Assemble(o.persona, interactions, norm.llmInput)
		start := time.Now()
		answer, err = o.completions.Complete(ctx, messages)
		if err != nil {
			o.countQuery(modality, "completion_error")
			o.countProviderError("completion", err)
			return "", err
		}
		o.metrics.ObserveCompletionLatency(time.Since(start))
	}

	interactions = append(interactions, history.Interaction{
		Prompt:   norm.displayPrompt,
		Response: answer,
	})
	if err := o.store.Save(ctx, userID, sessionID, interactions); err != nil {
		o.countQuery(modality, "storage_error")
		return "", &StorageWriteError{Answer: answer, Err: err}
	}

	o.countQuery(modality, "ok")
	return answer, nil
}

func (o *Orchestrator) countQuery(modality, outcome string) {
	o.metrics.Queries.WithLabelValues(modality, outcome).Inc()
}

func (o *Orchestrator) countProviderError(provider string, err error) {
	if err == nil {
		return
	}
	code := "error"
	if errors.Is(err, llm.ErrUnavailable) {
		code = "unavailable"
	}
	o.metrics.ProviderErrors.WithLabelValues(provider, code).Inc()
}

func validateIDs(userID, sessionID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id must not be empty")
	}
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id must not be empty")
	}
	return nil
}
