package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type options struct {
	baseURL      string
	userID       string
	sessionID    string
	question     string
	documentPath string
	audioPath    string
	listSessions bool
	showHistory  bool
	timeout      time.Duration
}

type queryResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Answer string `json:"answer"`
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "geniecli: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "geniecli: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var timeoutMS int

	defaultBase := strings.TrimSpace(os.Getenv("GENIE_BASE_URL"))
	if defaultBase == "" {
		defaultBase = "http://127.0.0.1:8002"
	}

	flag.StringVar(&cfg.baseURL, "base-url", defaultBase, "Genie base URL")
	flag.StringVar(&cfg.userID, "user", "local", "user_id for the conversation")
	flag.StringVar(&cfg.sessionID, "session", "", "session_id (empty mints a new session)")
	flag.StringVar(&cfg.question, "q", "", "question to ask")
	flag.StringVar(&cfg.documentPath, "doc", "", "PDF document to ask about (requires -q)")
	flag.StringVar(&cfg.audioPath, "audio", "", "WAV recording containing the question")
	flag.BoolVar(&cfg.listSessions, "sessions", false, "list the user's sessions and exit")
	flag.BoolVar(&cfg.showHistory, "history", false, "print the session's history and exit")
	flag.IntVar(&timeoutMS, "timeout-ms", 120000, "request timeout in milliseconds")
	flag.Parse()

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if strings.TrimSpace(cfg.userID) == "" {
		return options{}, fmt.Errorf("user is required")
	}
	if timeoutMS < 1000 {
		timeoutMS = 1000
	}
	cfg.timeout = time.Duration(timeoutMS) * time.Millisecond

	modes := 0
	if cfg.listSessions {
		modes++
	}
	if cfg.showHistory {
		modes++
	}
	if cfg.documentPath != "" {
		modes++
	}
	if cfg.audioPath != "" {
		modes++
	}
	if cfg.question != "" && cfg.documentPath == "" && cfg.audioPath == "" && !cfg.listSessions && !cfg.showHistory {
		modes++
	}
	if modes == 0 {
		return options{}, fmt.Errorf("nothing to do: pass -q, -doc, -audio, -sessions or -history")
	}
	if modes > 1 {
		return options{}, fmt.Errorf("pick exactly one of -q, -doc, -audio, -sessions, -history")
	}
	if cfg.documentPath != "" && strings.TrimSpace(cfg.question) == "" {
		return options{}, fmt.Errorf("-doc requires -q")
	}
	if cfg.showHistory && strings.TrimSpace(cfg.sessionID) == "" {
		return options{}, fmt.Errorf("-history requires -session")
	}
	return cfg, nil
}

func run(cfg options) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()
	client := &http.Client{Timeout: cfg.timeout}

	switch {
	case cfg.listSessions:
		return printJSON(ctx, client, cfg.baseURL+"/v1/sessions?user_id="+cfg.userID)
	case cfg.showHistory:
		return printJSON(ctx, client, cfg.baseURL+"/v1/history?user_id="+cfg.userID+"&session_id="+cfg.sessionID)
	case cfg.documentPath != "":
		return uploadQuery(ctx, client, cfg, "/v1/query/document", cfg.documentPath, cfg.question)
	case cfg.audioPath != "":
		return uploadQuery(ctx, client, cfg, "/v1/query/audio", cfg.audioPath, "")
	default:
		return textQuery(ctx, client, cfg)
	}
}

func textQuery(ctx context.Context, client *http.Client, cfg options) error {
	payload, err := json.Marshal(map[string]string{
		"user_id":    cfg.userID,
		"session_id": cfg.sessionID,
		"question":   cfg.question,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+"/v1/query", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return doQuery(client, req)
}

func uploadQuery(ctx context.Context, client *http.Client, cfg options, path, filePath, question string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("user_id", cfg.userID)
	if cfg.sessionID != "" {
		_ = w.WriteField("session_id", cfg.sessionID)
	}
	if question != "" {
		_ = w.WriteField("question", question)
	}
	fw, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return doQuery(client, req)
}

func doQuery(client *http.Client, req *http.Request) error {
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		var fail errorResponse
		if json.Unmarshal(body, &fail) == nil && fail.Error != "" {
			if fail.Answer != "" {
				fmt.Println(fail.Answer)
			}
			if fail.Code != "" {
				return fmt.Errorf("%s (%d): %s", fail.Code, res.StatusCode, fail.Error)
			}
			return fmt.Errorf("%s (%d)", fail.Error, res.StatusCode)
		}
		return fmt.Errorf("http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out queryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	fmt.Println(out.Answer)
	if out.SessionID != "" {
		fmt.Fprintf(os.Stderr, "session: %s\n", out.SessionID)
	}
	return nil
}

func printJSON(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(strings.TrimSpace(string(body)))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
