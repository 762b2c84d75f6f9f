package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/ent0n29/genie/internal/history"
)

// Resolver assigns a session id when the client does not supply one. New ids
// are numbered after the user's existing sessions; resolution alone has no
// side effects, the session comes into existence on first save.
type Resolver struct {
	store history.Store
}

func NewResolver(store history.Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, userID, requested string) (string, error) {
	if s := strings.TrimSpace(requested); s != "" {
		return s, nil
	}
	sessions, err := r.store.ListSessions(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve session for %s: %w", userID, err)
	}
	return fmt.Sprintf("chat_%d", len(sessions)+1), nil
}
