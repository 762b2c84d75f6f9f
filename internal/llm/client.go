package llm

import (
	"context"
	"errors"

	"github.com/ent0n29/genie/internal/prompt"
)

// ErrUnavailable reports that the completion backend could not be reached at
// all. Callers distinguish it from a completion that failed after contact.
var ErrUnavailable = errors.New("completion backend unavailable")

// Client produces one completion from a full message sequence. Backends are
// stateless per call: conversation context always travels in messages.
type Client interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}
