package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ent0n29/genie/internal/config"
	"github.com/ent0n29/genie/internal/extract"
	"github.com/ent0n29/genie/internal/history"
	"github.com/ent0n29/genie/internal/httpapi"
	"github.com/ent0n29/genie/internal/llm"
	"github.com/ent0n29/genie/internal/observability"
	"github.com/ent0n29/genie/internal/query"
	"github.com/ent0n29/genie/internal/transcribe"
)

func main() {
	// Optional .env file for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL, cfg.HistoryDir)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("history store: postgres")
	} else {
		log.Printf("history store: files under %s", cfg.HistoryDir)
	}

	completions, err := llm.New(llm.Config{
		Mode:          cfg.CompletionMode,
		APIKey:        cfg.OpenAIAPIKey,
		BaseURL:       cfg.OpenAIBaseURL,
		Model:         cfg.OpenAIModel,
		HTTPURL:       cfg.CompletionHTTPURL,
		RetryAttempts: cfg.CompletionRetries,
	})
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}

	transcriber, err := transcribe.New(transcribe.Config{
		Mode:         cfg.TranscriberMode,
		APIKey:       cfg.OpenAIAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		Model:        cfg.WhisperAPIModel,
		CLIPath:      cfg.WhisperCLI,
		CLIModelPath: cfg.WhisperModelPath,
		CLILanguage:  cfg.WhisperLanguage,
		CLIThreads:   cfg.WhisperThreads,
	})
	if err != nil {
		log.Fatalf("transcriber init failed: %v", err)
	}

	orchestrator := query.NewOrchestrator(
		store,
		completions,
		extract.NewPDFExtractor(),
		transcriber,
		metrics,
		cfg.SystemPrompt,
	)

	api := httpapi.New(cfg, store, orchestrator, query.NewResolver(store), metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
