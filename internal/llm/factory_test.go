package llm

import "testing"

func TestNewModeSelection(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "explicit mock", cfg: Config{Mode: "mock"}, want: "*llm.MockClient"},
		{name: "auto without credentials", cfg: Config{Mode: "auto"}, want: "*llm.MockClient"},
		{name: "auto with api key", cfg: Config{Mode: "auto", APIKey: "sk-test"}, want: "*llm.OpenAIClient"},
		{name: "auto with http url", cfg: Config{Mode: "auto", HTTPURL: "http://localhost:1234"}, want: "*llm.HTTPClient"},
		{name: "http without url", cfg: Config{Mode: "http"}, wantErr: true},
		{name: "openai without key", cfg: Config{Mode: "openai"}, wantErr: true},
		{name: "unknown mode", cfg: Config{Mode: "quantum"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := newBase(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("newBase() error = nil, want failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("newBase() error = %v", err)
			}
			if got := typeName(client); got != tc.want {
				t.Fatalf("newBase() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNewWrapsWithRetry(t *testing.T) {
	client, err := New(Config{Mode: "mock", RetryAttempts: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := client.(*retryClient); !ok {
		t.Fatalf("New() with retry attempts should return a retry wrapper, got %T", client)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *MockClient:
		return "*llm.MockClient"
	case *OpenAIClient:
		return "*llm.OpenAIClient"
	case *HTTPClient:
		return "*llm.HTTPClient"
	default:
		return "unknown"
	}
}
