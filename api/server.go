// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs pricing logic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	rulesloader "catering-finance/adapters/rules"
	"catering-finance/adapters/storage"
	"catering-finance/core/rules"
	"catering-finance/internal/config"
	"catering-finance/internal/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 4 << 20

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
}

// Option configures a Server
type Option func(*serverOptions)

type serverOptions struct {
	rules  *rules.Configuration
	store  storage.Store
	logger *zap.Logger
}

// WithRules sets the rule document used when a request brings none
func WithRules(cfg *rules.Configuration) Option {
	return func(o *serverOptions) { o.rules = cfg }
}

// WithStore enables snapshot lookup and saving
func WithStore(store storage.Store) Option {
	return func(o *serverOptions) { o.store = store }
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// NewServer creates a new API server
func NewServer(version string, opts ...Option) *Server {
	o := serverOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		handler: NewHandler(version, o.rules, o.store, o.logger),
		mux:     http.NewServeMux(),
		version: version,
		logger:  o.logger,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /v1/financials", s.handleFinancials)
	s.mux.HandleFunc("POST /v1/menu/override", s.handleMenuOverride)
	s.mux.HandleFunc("GET /v1/rules/default", s.handleDefaultRules)
	s.mux.HandleFunc("POST /v1/rules/validate", s.handleValidateRules)
	s.mux.HandleFunc("POST /v1/rules/diff", s.handleDiff)

	// Stored snapshots and records
	s.mux.HandleFunc("GET /v1/snapshots", s.handleListSnapshots)
	s.mux.HandleFunc("GET /v1/records/{id}", s.handleGetRecord)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleFinancials handles POST /v1/financials
func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	requestID := generateRequestID()

	var req FinancialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, requestID, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.handler.execute(r.Context(), requestID, &req)
	if err != nil {
		code, status := errorStatus(err)
		s.writeError(w, requestID, code, err.Error(), status)
		return
	}

	s.writeJSON(w, resp, http.StatusOK)
}

// handleMenuOverride handles POST /v1/menu/override
func (s *Server) handleMenuOverride(w http.ResponseWriter, r *http.Request) {
	var req MenuOverrideRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, "", "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.handler.priceMenu(&req), http.StatusOK)
}

// handleDefaultRules handles GET /v1/rules/default
func (s *Server) handleDefaultRules(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, rules.Default(), http.StatusOK)
}

// handleValidateRules handles POST /v1/rules/validate. HCL bodies are
// accepted when the content type names hcl.
func (s *Server) handleValidateRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, "", "INVALID_BODY", err.Error(), http.StatusBadRequest)
		return
	}

	format := rulesloader.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "hcl") {
		format = rulesloader.FormatHCL
	}
	cfg, err := rulesloader.Parse(body, "request", format)
	if err != nil {
		code, status := errorStatus(err)
		s.writeError(w, "", code, err.Error(), status)
		return
	}

	hash, err := storage.HashRules(cfg)
	if err != nil {
		s.writeError(w, "", "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	issues := cfg.Validate()
	if issues == nil {
		issues = []rules.Issue{}
	}
	s.writeJSON(w, ValidateRulesResponse{
		Valid:  len(issues) == 0,
		Hash:   hash,
		Issues: issues,
	}, http.StatusOK)
}

// handleListSnapshots handles GET /v1/snapshots
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.handler.store == nil {
		s.writeError(w, "", "NOT_SUPPORTED", "snapshot store not configured", http.StatusServiceUnavailable)
		return
	}

	snapshots, err := s.handler.store.ListSnapshots(r.Context(), &storage.ListFilter{Limit: 100})
	if err != nil {
		code, status := errorStatus(err)
		s.writeError(w, "", code, err.Error(), status)
		return
	}

	type snapshotInfo struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Hash      string `json:"hash"`
		CreatedAt string `json:"created_at"`
	}
	infos := make([]snapshotInfo, 0, len(snapshots))
	for _, snap := range snapshots {
		infos = append(infos, snapshotInfo{
			ID:        snap.ID,
			Name:      snap.Name,
			Hash:      snap.Hash,
			CreatedAt: snap.CreatedAt.Format(time.RFC3339),
		})
	}

	s.writeJSON(w, map[string]interface{}{
		"snapshots": infos,
		"count":     len(infos),
	}, http.StatusOK)
}

// handleGetRecord handles GET /v1/records/{id}
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if s.handler.store == nil {
		s.writeError(w, "", "NOT_SUPPORTED", "snapshot store not configured", http.StatusServiceUnavailable)
		return
	}

	rec, err := s.handler.store.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		code, status := errorStatus(err)
		s.writeError(w, "", code, err.Error(), status)
		return
	}
	s.writeJSON(w, rec, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "catering-finance",
		"api_version": "v1",
	}, http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, requestID, code, message string, status int) {
	s.writeJSON(w, &FinancialsResponse{
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Status:    "error",
		Errors:    []ErrorDetail{{Code: code, Message: message}},
	}, status)
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Internal("server stopped", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
