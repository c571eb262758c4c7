package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/arbor/api"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	return api.Load(context.Background())
})

// Tree is the read-only view of a running tree served by the adapter.
type Tree interface {
	Snapshot() domain.TreeSnapshot
}

// Halter stops an in-progress run. *runner.Runner satisfies it.
type Halter interface {
	HaltTree()
}

// Server exposes a tree instance over HTTP.
type Server struct {
	Tree    Tree
	Halter  Halter
	Streams *StreamManager
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithHalter enables POST /halt.
func WithHalter(h Halter) Option {
	return func(s *Server) {
		s.Halter = h
	}
}

// WithStreams serves the status events published to sm on GET /events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts a metrics handler on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for tree.
func NewHandler(tree Tree, opts ...Option) http.Handler {
	s := &Server{Tree: tree, Version: "dev", Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	if doc, err := loadSpec(); err != nil {
		s.Logger.Error("openapi document unavailable, requests are not validated", "err", err)
	} else if mw, err := validateRequests(doc, s.Logger); err != nil {
		s.Logger.Error("openapi router failed, requests are not validated", "err", err)
	} else {
		r.Use(mw)
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Raw())
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return enableCORS(HandlerFromMux(s, r))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(s.Version),
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Tree.Snapshot()
	snap.Blackboard = nil
	s.writeJSON(w, http.StatusOK, snap)
}

// GetBlackboard handles the GET /blackboard request.
func (s *Server) GetBlackboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Tree.Snapshot().Blackboard)
}

// Halt handles the POST /halt request.
func (s *Server) Halt(w http.ResponseWriter, r *http.Request) {
	if s.Halter == nil {
		http.Error(w, "Halting is not enabled", http.StatusNotImplemented)
		return
	}
	s.Halter.HaltTree()
	s.Logger.Info("halt requested over http", "remote", r.RemoteAddr)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "halting"})
}

// SubscribeEvents handles the GET /events request (SSE).
// params.Path, when set, keeps only events below that node path.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	if s.Streams == nil {
		http.Error(w, "Event streaming is not enabled", http.StatusNotImplemented)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	var prefix string
	if params.Path != nil {
		prefix = *params.Path
	}
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if prefix != "" && !strings.HasPrefix(e.Path, prefix) {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.Logger.Warn("SSE: cannot encode event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
