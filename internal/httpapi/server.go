package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ent0n29/genie/internal/config"
	"github.com/ent0n29/genie/internal/extract"
	"github.com/ent0n29/genie/internal/history"
	"github.com/ent0n29/genie/internal/llm"
	"github.com/ent0n29/genie/internal/observability"
	"github.com/ent0n29/genie/internal/query"
)

type Server struct {
	cfg          config.Config
	store        history.Store
	orchestrator *query.Orchestrator
	resolver     *query.Resolver
	metrics      *observability.Metrics
}

func New(cfg config.Config, store history.Store, orchestrator *query.Orchestrator, resolver *query.Resolver, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		store:        store,
		orchestrator: orchestrator,
		resolver:     resolver,
		metrics:      metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/query", s.handleTextQuery)
	r.Post("/v1/query/document", s.handleDocumentQuery)
	r.Post("/v1/query/audio", s.handleAudioQuery)
	r.Get("/v1/sessions", s.handleListSessions)
	r.Get("/v1/history", s.handleHistory)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type textQueryRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type queryResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleTextQuery(w http.ResponseWriter, r *http.Request) {
	var req textQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "missing_question", "question is required")
		return
	}

	sessionID, err := s.resolveSession(w, r, req.UserID, req.SessionID)
	if err != nil {
		return
	}

	answer, err := s.orchestrator.QueryText(r.Context(), req.UserID, sessionID, req.Question)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, queryResponse{Answer: answer, SessionID: sessionID})
}

func (s *Server) handleDocumentQuery(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	defer form.cleanup()

	if strings.TrimSpace(form.question) == "" {
		respondError(w, http.StatusBadRequest, "missing_question", "question is required")
		return
	}

	sessionID, err := s.resolveSession(w, r, form.userID, form.sessionID)
	if err != nil {
		return
	}

	answer, err := s.orchestrator.QueryDocument(r.Context(), form.userID, sessionID, form.path, form.filename, form.question)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, queryResponse{Answer: answer, SessionID: sessionID})
}

func (s *Server) handleAudioQuery(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	defer form.cleanup()

	sessionID, err := s.resolveSession(w, r, form.userID, form.sessionID)
	if err != nil {
		return
	}

	answer, err := s.orchestrator.QueryAudio(r.Context(), form.userID, sessionID, form.path)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, queryResponse{Answer: answer, SessionID: sessionID})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "query parameter user_id is required")
		return
	}

	sessions, err := s.store.ListSessions(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if userID == "" || sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_ids", "query parameters user_id and session_id are required")
		return
	}

	interactions, err := s.store.Load(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, history.ErrCorrupt) {
			respondError(w, http.StatusInternalServerError, "corrupt_history", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"interactions": interactions})
}

// resolveSession fills in a minted session id when the client omitted one.
// On failure it writes the error response itself.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request, userID, requested string) (string, error) {
	sessionID, err := s.resolver.Resolve(r.Context(), userID, requested)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session_resolution_failed", err.Error())
		return "", err
	}
	if strings.TrimSpace(requested) == "" {
		s.metrics.SessionsMinted.Inc()
	}
	return sessionID, nil
}

// upload is one request-scoped multipart payload spooled to disk. cleanup
// must run on every exit path.
type upload struct {
	userID    string
	sessionID string
	question  string
	filename  string
	path      string
	dir       string
}

func (u *upload) cleanup() {
	if u.dir != "" {
		_ = os.RemoveAll(u.dir)
	}
}

func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_multipart", err.Error())
		return nil, false
	}

	form := &upload{
		userID:    strings.TrimSpace(r.FormValue("user_id")),
		sessionID: strings.TrimSpace(r.FormValue("session_id")),
		question:  strings.TrimSpace(r.FormValue("question")),
	}
	if form.userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_file", "file is required")
		return nil, false
	}
	defer file.Close()

	path, dir, err := spoolToTemp(file, header.Filename)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "upload_spool_failed", err.Error())
		return nil, false
	}
	form.filename = header.Filename
	form.path = path
	form.dir = dir
	return form, true
}

// spoolToTemp writes the payload into its own temp directory so concurrent
// requests never collide and cleanup is a single RemoveAll.
func spoolToTemp(file multipart.File, filename string) (path, dir string, err error) {
	dir, err = os.MkdirTemp("", "genie-upload-*")
	if err != nil {
		return "", "", err
	}
	path = filepath.Join(dir, "payload_"+uuid.NewString()+filepath.Ext(filename))
	dst, err := os.Create(path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", "", err
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.RemoveAll(dir)
		return "", "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", err
	}
	return path, dir, nil
}

func (s *Server) respondQueryError(w http.ResponseWriter, err error) {
	var swe *query.StorageWriteError
	switch {
	case errors.As(err, &swe):
		// The answer exists even though it was not saved; surface both facts.
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  swe.Error(),
			"code":   "storage_write_failed",
			"answer": swe.Answer,
		})
	case errors.Is(err, history.ErrCorrupt):
		respondError(w, http.StatusInternalServerError, "corrupt_history", err.Error())
	case errors.Is(err, extract.ErrUnreadable):
		respondError(w, http.StatusBadRequest, "document_unreadable", err.Error())
	case errors.Is(err, query.ErrUnsupportedAudio):
		respondError(w, http.StatusBadRequest, "unsupported_audio", err.Error())
	case errors.Is(err, llm.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "completion_unavailable", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "completion_failed", err.Error())
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
