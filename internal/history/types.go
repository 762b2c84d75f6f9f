package history

import (
	"context"
	"errors"
)

// Interaction is one prompt/response pair, the atomic unit of a conversation.
type Interaction struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// ErrCorrupt reports that a persisted session record could not be decoded.
// Callers must surface it rather than treat the session as empty.
var ErrCorrupt = errors.New("corrupt history record")

// Store persists ordered interaction lists keyed by (user, session).
type Store interface {
	// Load returns the interactions of a session in arrival order.
	// A session that was never written loads as an empty list, not an error.
	Load(ctx context.Context, userID, sessionID string) ([]Interaction, error)
	// Save atomically replaces the full interaction list of a session,
	// creating the user namespace and the session record as needed.
	Save(ctx context.Context, userID, sessionID string, interactions []Interaction) error
	// ListSessions enumerates the session ids belonging to a user.
	ListSessions(ctx context.Context, userID string) ([]string, error)
	Close() error
}
