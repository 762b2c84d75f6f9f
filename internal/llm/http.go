package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ent0n29/genie/internal/prompt"
)

// HTTPClient forwards the message sequence to a bare completion endpoint,
// e.g. a local llama.cpp-style server without an OpenAI-compatible surface.
type HTTPClient struct {
	url    string
	client *http.Client
}

func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type httpCompletionRequest struct {
	Messages []prompt.Message `json:"messages"`
}

// httpStatusError carries the upstream status so retry classification can
// decide whether another attempt makes sense.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("completion http status %d: %s", e.status, e.body)
}

func (c *HTTPClient) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	payload, err := json.Marshal(httpCompletionRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		if res.StatusCode == http.StatusServiceUnavailable {
			return "", fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
		}
		return "", &httpStatusError{status: res.StatusCode, body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		// Plain-text endpoints are acceptable; the body is the answer.
		return strings.TrimSpace(string(body)), nil
	}
	for _, k := range []string{"text", "answer", "output", "message"} {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("completion response missing text field")
}
