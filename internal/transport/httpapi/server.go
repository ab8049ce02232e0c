package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"webshop-env/internal/application/port/input"
	"webshop-env/internal/application/port/output"
	"webshop-env/internal/infrastructure/browser/htmlparse"
	"webshop-env/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 16

// unmatchedRoute метит в метриках запросы мимо маршрутов, чтобы сырые пути не плодили серии.
const unmatchedRoute = "unmatched"

type Config struct {
	ServiceName string
	LogLevel    string
	JSONLogs    bool

	// Ready сообщает, жив ли браузер; nil означает "всегда готов".
	Ready func() bool
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "webshop-env",
		LogLevel:    "info",
	}
}

// Server отдаёт одно окружение по HTTP. Окружение само сериализует шаги.
type Server struct {
	env       input.Environment
	logger    output.LoggerPort
	collector *metrics.Collector
	reqLogger zerolog.Logger
	ready     func() bool
}

func NewServer(env input.Environment, logger output.LoggerPort, collector *metrics.Collector, cfg Config) *Server {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultConfig().ServiceName
	}
	return &Server{
		env:       env,
		logger:    logger.WithField("component", "httpapi"),
		collector: collector,
		ready:     cfg.Ready,
		reqLogger: httplog.NewLogger(cfg.ServiceName, httplog.Options{
			LogLevel: cfg.LogLevel,
			JSON:     cfg.JSONLogs,
			Concise:  true,
		}),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(s.reqLogger))
	r.Use(middleware.Recoverer)
	if s.collector != nil {
		r.Use(s.metricsMiddleware)
		r.Method(http.MethodGet, "/metrics", s.collector.Handler())
	}

	r.Get("/healthz", s.handleHealthz)
	r.Post("/reset", s.handleReset)
	r.Post("/step", s.handleStep)
	r.Get("/actions", s.handleActions)
	r.Get("/session", s.handleSession)
	return r
}

type stepRequest struct {
	Action string `json:"action"`
}

type sessionResponse struct {
	Session     string `json:"session"`
	Instruction string `json:"instruction"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "browser closed"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	obs, err := s.env.Reset(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, obs)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error(), Status: http.StatusBadRequest})
		return
	}

	res, err := s.env.Step(r.Context(), req.Action)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.env.AvailableActions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, actions)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionResponse{
		Session:     s.env.Session(),
		Instruction: s.env.InstructionText(),
	})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, htmlparse.ErrMalformedReward) {
		status = http.StatusBadGateway
	}
	s.logger.Error("Request failed", "path", r.URL.Path, "status", status, "error", err)
	respondJSON(w, status, errorResponse{Error: err.Error(), Status: status})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.collector.RecordHTTPRequest(r.Method, path, code, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
