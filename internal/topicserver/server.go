// Package topicserver serves a topic collection over HTTP for local
// development and integration tests.
//
// Routes:
//
//	GET    /api/topic       JSON array of topics, ordered by id
//	GET    /api/topic/{id}  one topic
//	POST   /api/topic       JSON array of drafts, applied as one batch
//	DELETE /api/topic       JSON array of ids, applied as one batch
//	GET    /healthz         "Healthy" when the store is reachable
//
// Failures are JSON bodies of the form {"message": "..."}.
package topicserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/topic"
)

// maxRequestBytes bounds POST and DELETE bodies.
const maxRequestBytes = 1 << 20

// Repository is the storage the server fronts. *store.Store implements it.
type Repository interface {
	ListTopics(ctx context.Context) ([]topic.Topic, error)
	GetTopic(ctx context.Context, id int64) (topic.Topic, error)
	UpsertTopics(ctx context.Context, drafts []topic.Draft) error
	DeleteTopics(ctx context.Context, ids []int64) (int64, error)
	Ping() error
}

var _ Repository = (*store.Store)(nil)

// Option configures a Server.
type Option func(*Server)

// WithRequestIDs sets the generator used when a request has no X-Request-ID.
func WithRequestIDs(gen topic.RequestIDGenerator) Option {
	return func(s *Server) { s.requestIDs = gen }
}

// WithAllowedOrigins restricts CORS to the given origins. The default
// allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// Server is an http.Handler serving the topic collection.
type Server struct {
	repo       Repository
	logger     *slog.Logger
	requestIDs topic.RequestIDGenerator
	origins    []string
	router     chi.Router
}

// New creates a server over repo. A nil logger discards log output.
func New(repo Repository, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		repo:       repo,
		logger:     logger,
		requestIDs: topic.UUIDv7Generator{},
		origins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", topic.RequestIDHeader},
		ExposedHeaders: []string{topic.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route(topic.CollectionPath, func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleUpsert)
		r.Delete("/", s.handleDelete)
		r.Get("/{id}", s.handleGet)
	})
	return r
}

type ctxKey struct{}

// RequestIDFromContext returns the id assigned to the request, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestID propagates the caller's X-Request-ID or assigns one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(topic.RequestIDHeader)
		if id == "" {
			id = s.requestIDs.Generate()
		}
		w.Header().Set(topic.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.repo.Ping(); err != nil {
		s.logger.Warn("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "Unhealthy")
		return
	}
	_, _ = io.WriteString(w, "Healthy")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	topics, err := s.repo.ListTopics(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, topic.DefaultFetchMessage, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "id must be an integer", err)
		return
	}
	t, err := s.repo.GetTopic(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrTopicNotFound):
		s.fail(w, r, http.StatusNotFound, err.Error(), err)
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, topic.DefaultFetchMessage, err)
	default:
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var drafts []topic.Draft
	if err := readJSON(w, r, &drafts); err != nil {
		s.fail(w, r, http.StatusBadRequest, "body must be a JSON array of topics", err)
		return
	}
	err := s.repo.UpsertTopics(r.Context(), drafts)
	switch {
	case errors.Is(err, store.ErrTopicNotFound):
		s.fail(w, r, http.StatusNotFound, err.Error(), err)
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, topic.DefaultSaveMessage, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if err := readJSON(w, r, &ids); err != nil {
		s.fail(w, r, http.StatusBadRequest, "body must be a JSON array of ids", err)
		return
	}
	if _, err := s.repo.DeleteTopics(r.Context(), ids); err != nil {
		s.fail(w, r, http.StatusInternalServerError, topic.DefaultDeleteMessage, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	s.logger.Warn("request failed",
		"request_id", RequestIDFromContext(r.Context()),
		"status", status,
		"error", err,
	)
	writeJSON(w, status, errorBody{Message: message})
}

type errorBody struct {
	Message string `json:"message"`
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
