package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserHeader carries the authenticated user id set by the hosting gateway.
const UserHeader = "X-User-ID"

// Server serves the analysis and conversation API of a nexi.Service.
type Server struct {
	svc      *nexi.Service
	streams  *StreamManager
	logger   *slog.Logger
	gatherer prometheus.Gatherer

	doc    *openapi3.T
	router routers.Router
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer selects the registry exposed at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams shares a StreamManager between handlers.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// NewHandler creates the HTTP handler for svc. The embedded OpenAPI
// document is validated here; a broken document fails construction.
func NewHandler(svc *nexi.Service, opts ...Option) (http.Handler, error) {
	s := &Server{
		svc:      svc,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}

	doc, router, err := loadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.doc, s.router = doc, router

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(s.validateRequests)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/graph", s.GetGraph)

		r.Post("/analyze", s.Analyze)
		r.Get("/analyses/{attemptId}", s.GetAnalysis)

		r.Post("/conversations", s.StartConversation)
		r.Route("/conversations/{id}", func(r chi.Router) {
			r.Get("/", s.GetConversation)
			r.Delete("/", s.DeleteConversation)
			r.Post("/answers", s.AnswerConversation)
			r.Post("/revise", s.ReviseConversation)
			r.Get("/summary", s.GetSummary)
			r.Post("/analyze", s.AnalyzeConversation)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+UserHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Nexi API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "nexi-http",
		"version":     strings.TrimSpace(nexi.Version),
		"api_version": apiVersion,
		"pipeline":    s.svc.Pipeline().String(),
	})
}

// subjectOf identifies who an attempt is charged to: the user header when
// present, otherwise the client address.
func subjectOf(r *http.Request) analysis.Subject {
	if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
		return analysis.Subject{UserID: id}
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return analysis.Subject{ClientKey: first}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return analysis.Subject{ClientKey: host}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// decode reads an optional JSON body into v.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
