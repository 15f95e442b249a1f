// Package server provides the HTTP handlers and routing for the MCP server.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"toolbox-mcp/internal/dispatch"
	"toolbox-mcp/internal/schema"
)

// Config contains the router settings.
type Config struct {
	// Token protects the /mcp subtree when set.
	Token  string
	Logger *slog.Logger
	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Stream is the MCP streamable HTTP endpoint. Nil leaves the route out.
	Stream http.Handler
}

// Server contains the configured router and the dispatcher it calls into.
type Server struct {
	cfg    Config
	router *chi.Mux
	disp   *dispatch.Dispatcher
	log    *slog.Logger
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config, d *dispatch.Dispatcher) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		disp:   d,
		log:    cfg.Logger,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/health", s.handleHealth)
		if cfg.Gatherer != nil {
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
		}
	})

	s.router.Route("/mcp", func(r chi.Router) {
		r.Use(s.auth)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/tools", s.handleListTools)
			r.Post("/call", s.handleCall)
			r.Get("/resources", s.handleListResources)
			r.Get("/resources/read", s.handleReadResource)
			r.Get("/prompts", s.handleListPrompts)
			r.Post("/prompts/get", s.handleGetPrompt)
		})
		// Streams stay open longer than the request timeout.
		if cfg.Stream != nil {
			r.Handle("/stream", cfg.Stream)
		}
	})

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	tools := []Tool{}
	for t := range s.disp.Registry().Tools() {
		tools = append(tools, Tool{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.Input.JSONSchema(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}
	res, err := s.disp.Invoke(r.Context(), req.Name, req.Args)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListResources(w http.ResponseWriter, _ *http.Request) {
	resources := []Resource{}
	for d := range s.disp.Registry().Resources() {
		resources = append(resources, Resource{
			URI:         d.URI,
			Name:        d.Name,
			Title:       d.Title,
			Description: d.Description,
			MIMEType:    d.MIMEType,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": resources})
}

func (s *Server) handleReadResource(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "uri is required"})
		return
	}
	desc, text, err := s.disp.ReadResource(r.Context(), uri)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contents": []ResourceContents{{URI: desc.URI, MIMEType: desc.MIMEType, Text: text}},
	})
}

func (s *Server) handleListPrompts(w http.ResponseWriter, _ *http.Request) {
	prompts := []Prompt{}
	for p := range s.disp.Registry().Prompts() {
		args := make([]PromptArgument, 0, len(p.Args))
		for _, f := range p.Args {
			args = append(args, PromptArgument{Name: f.Name, Description: f.Description, Required: !f.Optional})
		}
		prompts = append(prompts, Prompt{
			Name:        p.Name,
			Title:       p.Title,
			Description: p.Description,
			Arguments:   args,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}
	res, err := s.disp.GetPrompt(r.Context(), req.Name, req.Args)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeDispatchError maps dispatcher rejections onto HTTP statuses.
func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.Is(err, dispatch.ErrToolNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown tool"})
	case errors.Is(err, dispatch.ErrPromptNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown prompt"})
	case errors.Is(err, dispatch.ErrResourceNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown resource"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Field: verr.Field, Constraint: verr.Constraint})
	default:
		s.log.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
