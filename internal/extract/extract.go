// Package extract turns uploaded documents into plain text for prompting.
package extract

import (
	"context"
	"errors"
)

// ErrUnreadable reports that a document could not be parsed. It is a hard
// failure: the request fails and nothing is recorded to history.
var ErrUnreadable = errors.New("document unreadable")

// Extractor produces the full plain text of a document on disk.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
