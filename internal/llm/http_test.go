package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ent0n29/genie/internal/prompt"
)

func TestHTTPClientCompleteJSON(t *testing.T) {
	var received httpCompletionRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Hi!"})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	messages := []prompt.Message{
		{Role: prompt.RoleSystem, Content: "persona"},
		{Role: prompt.RoleUser, Content: "Hello"},
	}
	out, err := client.Complete(context.Background(), messages)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Hi!" {
		t.Fatalf("Complete() = %q, want %q", out, "Hi!")
	}
	if len(received.Messages) != 2 || received.Messages[1].Content != "Hello" {
		t.Fatalf("backend received %+v, want the full message sequence", received.Messages)
	}
}

func TestHTTPClientPlainTextBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain answer\n"))
	}))
	defer ts.Close()

	out, err := NewHTTPClient(ts.URL).Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "plain answer" {
		t.Fatalf("Complete() = %q, want %q", out, "plain answer")
	}
}

func TestHTTPClientServiceUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Complete(context.Background(), nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Complete() error = %v, want ErrUnavailable", err)
	}
}

func TestHTTPClientUpstreamErrorIsClassified(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Complete(context.Background(), nil)
	if err == nil {
		t.Fatalf("Complete() error = nil, want failure")
	}
	if !isRetryable(err) {
		t.Fatalf("429 should be retryable, got %v", err)
	}
}
