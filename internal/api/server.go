// Package api exposes the pattern store and extraction engine over HTTP.
// The browser frontend lives on another origin, so CORS is always on.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/rentfolio/billscan/internal/ocr"
	"github.com/rentfolio/billscan/internal/store"
	"github.com/rentfolio/billscan/internal/suggest"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store         store.Store
	extractor     ocr.Extractor
	suggester     *suggest.Suggester // nil disables POST /text-patterns/suggest
	minConfidence float64
}

// NewServer creates a Server. suggester may be nil when no Anthropic key is
// configured.
func NewServer(st store.Store, ext ocr.Extractor, sg *suggest.Suggester, minConfidence float64) *Server {
	return &Server{
		store:         st,
		extractor:     ext,
		suggester:     sg,
		minConfidence: minConfidence,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/text-patterns", func(r chi.Router) {
		r.Post("/", s.handleCreatePattern)
		r.Get("/", s.handleListPatterns)
		r.Get("/{id}", s.handleGetPattern)
		r.Put("/{id}", s.handleUpdatePattern)
		r.Delete("/{id}", s.handleDeletePattern)

		r.Post("/extract-text", s.handleExtractText)
		r.Post("/match", s.handleMatch)
		r.Post("/extract/{id}", s.handleExtract)
		r.Post("/preview", s.handlePreview)
		r.Post("/suggest", s.handleSuggest)
	})

	return r
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
