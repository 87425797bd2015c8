package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/liamcoop/unwind/cdm"
	"github.com/liamcoop/unwind/internal/config"
	"github.com/liamcoop/unwind/internal/logger"
	"github.com/liamcoop/unwind/qualify"
	"github.com/liamcoop/unwind/unwind"
)

type Server struct {
	cfg    *config.Config
	db     *sql.DB // nil when running with the in-memory store
	engine *qualify.Engine
	svc    *unwind.Service
	router *chi.Mux
}

// NewServer wires the taxonomy store, qualification engine and unwind
// pipeline. With DATABASE_URL unset the server runs on the in-memory store.
func NewServer(cfg *config.Config) (*Server, error) {
	var db *sql.DB
	var store qualify.TaxonomyStore

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store = qualify.NewPostgresTaxonomyStore(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory taxonomy store")
		store = qualify.NewInMemoryTaxonomyStore()
	}

	source := unwind.NewHTTPDocumentSource(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)

	return newServer(cfg, db, store, source)
}

// newServer finishes construction from explicit collaborators; tests inject
// their own store and document source here.
func newServer(cfg *config.Config, db *sql.DB, store qualify.TaxonomyStore, source unwind.DocumentSource) (*Server, error) {
	engine, err := qualify.NewEngine(store)
	if err != nil {
		return nil, fmt.Errorf("failed to create qualification engine: %w", err)
	}

	svc, err := unwind.NewService(source, engine, unwind.Config{
		ReductionAmount: cfg.UnwindAmount,
		CurrencyCode:    cfg.CurrencyCode,
		CurrencyScheme:  cfg.CurrencyScheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create unwind service: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		db:     db,
		engine: engine,
		svc:    svc,
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)

	// Smoke endpoints
	r.Get("/api/v1/hello", s.handleHello)
	r.Post("/api/v1/echo", s.handleEcho)

	// Unwind pipeline
	r.Get("/api/v1/sample-trade", s.handleSampleTrade)
	r.Get("/api/v1/trade", s.handleTrade)

	// Taxonomy management
	r.Route("/api/v1/taxonomies", func(r chi.Router) {
		r.Post("/", s.handleCreateTaxonomy)
		r.Get("/", s.handleListTaxonomies)

		r.Route("/{taxonomyId}", func(r chi.Router) {
			r.Get("/", s.handleGetTaxonomy)
			r.Put("/", s.handleUpdateTaxonomy)
			r.Delete("/", s.handleDeleteTaxonomy)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"totalErrors":   logger.TotalErrors.Load(),
		"totalWarnings": logger.TotalWarnings.Load(),
	})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Hello from the unwind service!")
}

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "failed to read request body", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Echo: %s", body)
}

// handleSampleTrade unwinds the configured sample trade document.
func (s *Server) handleSampleTrade(w http.ResponseWriter, r *http.Request) {
	s.unwindURL(w, r, s.cfg.SampleTradeURL)
}

// handleTrade unwinds the trade document at the caller-supplied URL.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "url query parameter is required", nil)
		return
	}
	s.unwindURL(w, r, url)
}

func (s *Server) unwindURL(w http.ResponseWriter, r *http.Request, url string) {
	instruction, err := s.svc.Unwind(r.Context(), url)
	if err != nil {
		kind, status := classifyPipelineError(err)
		logger.Warn("unwind pipeline failed", "url", url, "kind", kind, "error", err)
		respondError(w, status, kind, "unwind failed", err)
		return
	}

	respondJSON(w, http.StatusOK, instruction)
}

// classifyPipelineError maps the pipeline's error taxonomy onto HTTP
// statuses. Transport failures are the collaborator's fault (502); parse
// failures are the document's (400); navigation, variant and qualification
// failures are semantically unprocessable documents (422).
func classifyPipelineError(err error) (kind string, status int) {
	var (
		transportErr     *unwind.TransportError
		parseErr         *cdm.ParseError
		navErr           *cdm.NavigationError
		mismatchErr      *cdm.TypeMismatchError
		qualificationErr *unwind.QualificationError
	)

	switch {
	case errors.As(err, &transportErr):
		return "transport", http.StatusBadGateway
	case errors.As(err, &parseErr):
		return "parse", http.StatusBadRequest
	case errors.As(err, &navErr):
		return "navigation", http.StatusUnprocessableEntity
	case errors.As(err, &mismatchErr):
		return "type_mismatch", http.StatusUnprocessableEntity
	case errors.As(err, &qualificationErr):
		return "qualification", http.StatusUnprocessableEntity
	default:
		return "internal", http.StatusInternalServerError
	}
}

func (s *Server) handleCreateTaxonomy(w http.ResponseWriter, r *http.Request) {
	var req CreateTaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body", err)
		return
	}

	if req.Name == "" || req.Expression == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "name and expression are required", nil)
		return
	}

	tax := &qualify.Taxonomy{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Expression: req.Expression,
		Active:     req.Active,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.engine.AddTaxonomy(tax); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "failed to add taxonomy", err)
		return
	}

	respondJSON(w, http.StatusCreated, taxonomyResponse(tax))
}

func (s *Server) handleListTaxonomies(w http.ResponseWriter, r *http.Request) {
	taxonomies, err := s.engine.ListActiveTaxonomies()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "failed to list taxonomies", err)
		return
	}

	out := make([]TaxonomyResponse, 0, len(taxonomies))
	for _, tax := range taxonomies {
		out = append(out, taxonomyResponse(tax))
	}

	respondJSON(w, http.StatusOK, map[string]any{"taxonomies": out})
}

func (s *Server) handleGetTaxonomy(w http.ResponseWriter, r *http.Request) {
	taxonomyID := chi.URLParam(r, "taxonomyId")

	tax, err := s.engine.GetTaxonomy(taxonomyID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "taxonomy not found", err)
		return
	}

	respondJSON(w, http.StatusOK, taxonomyResponse(tax))
}

func (s *Server) handleUpdateTaxonomy(w http.ResponseWriter, r *http.Request) {
	taxonomyID := chi.URLParam(r, "taxonomyId")

	var req UpdateTaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body", err)
		return
	}

	tax := &qualify.Taxonomy{
		ID:         taxonomyID,
		Name:       req.Name,
		Expression: req.Expression,
		Active:     req.Active,
		UpdatedAt:  time.Now(),
	}

	if err := s.engine.UpdateTaxonomy(tax); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "failed to update taxonomy", err)
		return
	}

	respondJSON(w, http.StatusOK, taxonomyResponse(tax))
}

func (s *Server) handleDeleteTaxonomy(w http.ResponseWriter, r *http.Request) {
	taxonomyID := chi.URLParam(r, "taxonomyId")

	if err := s.engine.DeleteTaxonomy(taxonomyID); err != nil {
		respondError(w, http.StatusNotFound, "not_found", "taxonomy not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func taxonomyResponse(tax *qualify.Taxonomy) TaxonomyResponse {
	return TaxonomyResponse{
		ID:         tax.ID,
		Name:       tax.Name,
		Expression: tax.Expression,
		Active:     tax.Active,
		CreatedAt:  tax.CreatedAt,
		UpdatedAt:  tax.UpdatedAt,
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, kind, message string, err error) {
	if status >= 500 {
		logger.ErrorHttp5xx()
	} else if status >= 400 {
		logger.WarnHttp4xx()
	}

	resp := ErrorResponse{
		Kind:  kind,
		Error: message,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	if server.db != nil {
		defer server.db.Close()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
