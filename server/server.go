// Package server exposes the coordinator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ecovalley"
	"ecovalley/catalog"
)

const maxBodyBytes = 1 << 20

// Coordinator answers suggest requests and exposes its history.
type Coordinator interface {
	ecovalley.Coordinator
	History() []ecovalley.ConversationEntry
}

// Catalog lists the loaded materials.
type Catalog interface {
	Records() []catalog.Record
}

type Options struct {
	AllowedOrigins []string
}

type Server struct {
	coordinator Coordinator
	catalog     Catalog
	router      chi.Router

	suggestSchema *jsonschema.Schema
}

func New(coord Coordinator, cat Catalog, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		coordinator:   coord,
		catalog:       cat,
		suggestSchema: SuggestInputSchema(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/materials/suggest", s.handleSuggest)
		r.Get("/materials/suggest/schema", s.handleSuggestSchema)
		r.Get("/materials", s.handleMaterials)
		r.Get("/history", s.handleHistory)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("SERVER: Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("SERVER: Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the EcoValley material recommendation API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(ecovalley.TracerNameServer).Start(r.Context(), "Server.Suggest")
	defer span.End()

	var req ecovalley.SuggestRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, ecovalley.Validationf("invalid request body: %v", err))
		return
	}
	span.SetAttributes(attribute.Int("materials_count", len(req.Materials)))

	resp, err := s.coordinator.Process(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "suggest failed")
		span.RecordError(err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"materials": s.catalog.Records()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"conversation_history": s.coordinator.History()})
}

// StatusCode maps an error kind onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ecovalley.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ecovalley.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ecovalley.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("SERVER: Internal error", "error", err)
		detail = "internal server error"
	} else {
		slog.Warn("SERVER: Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"detail": strings.TrimSpace(detail)})
}

// writeJSON encodes v before writing any header, so an encoding failure is
// reported as a 500 instead of a truncated success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("SERVER: Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		data = []byte(`{"detail":"internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Error("SERVER: Failed to write response", "error", err)
	}
}
