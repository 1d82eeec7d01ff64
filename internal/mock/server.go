// Package mock is an in-memory stand-in for the file management backend.
// It serves the same /api routes and envelopes, and is used by tests and by
// `bizdesk mock` for local demos.
package mock

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/model"
)

// Server holds the fake backend state.
type Server struct {
	mu        sync.Mutex
	companies []model.Company
	contracts []model.Contract
	files     []storedFile
	nextID    int

	corsOrigin string
	latency    time.Duration
	errorRate  float64
	maxUpload  int64
	logger     *zap.Logger
	now        func() time.Time
}

type storedFile struct {
	item    model.FileItem
	content []byte
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigin sets the Access-Control-Allow-Origin value.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithErrorRate fails the given fraction of requests with a 500.
func WithErrorRate(rate float64) Option {
	return func(s *Server) { s.errorRate = rate }
}

// WithLogger logs every request.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces time.Now for created and updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithMaxUpload limits the multipart body size accepted by /upload.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		corsOrigin: "*",
		maxUpload:  110 << 20,
		logger:     zap.NewNop(),
		now:        time.Now,
		nextID:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests, s.cors, s.simulate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", s.handleListCompanies)
		r.Get("/companies/search", s.handleSearchCompanies)
		r.Post("/companies", s.handleCreateCompany)
		r.Get("/companies/{id}", s.handleGetCompany)
		r.Put("/companies/{id}", s.handleUpdateCompany)
		r.Delete("/companies/{id}", s.handleDeleteCompany)

		r.Get("/contracts", s.handleListContracts)
		r.Post("/contracts", s.handleCreateContract)
		r.Get("/contracts/{id}", s.handleGetContract)
		r.Put("/contracts/{id}", s.handleUpdateContract)
		r.Delete("/contracts/{id}", s.handleDeleteContract)

		r.Get("/files", s.handleListFiles)
		r.Get("/files/stats", s.handleFileStats)
		r.Delete("/files/{id}", s.handleDeleteFile)
		r.Get("/files/{id}/preview", s.handleFilePreview)
		r.Get("/files/{id}/content", s.handleFileContent)
		r.Get("/files/{id}/download", s.handleFileDownload)

		r.Post("/upload", s.handleUpload)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", rec.status),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) simulate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			if err := sleep(r.Context(), s.latency); err != nil {
				return
			}
		}
		if s.errorRate > 0 && rand.Float64() < s.errorRate {
			writeError(w, http.StatusInternalServerError, "simulated server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, map[string]any{
		"status":  "success",
		"success": true,
		"message": message,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":  "error",
		"success": false,
		"message": message,
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
