// Package transcribe converts canonical WAV audio into text.
package transcribe

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnrecognized reports that the backend found no usable speech in the
// payload. The audio adapter converts it into a user-visible fallback answer
// instead of failing the request.
var ErrUnrecognized = errors.New("speech not recognized")

// ServiceError reports a transcription backend failure with its detail. Like
// ErrUnrecognized it is consumed by the audio adapter, never surfaced as a
// request failure.
type ServiceError struct {
	Detail string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("speech recognition service error: %s", e.Detail)
}

// Transcriber produces the text of a WAV file on disk.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}
