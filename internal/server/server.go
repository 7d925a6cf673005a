// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz    liveness probe with build info
//	POST /v1/render  render the configured base map, returns image/png
//
// A render request carries the records to draw:
//
//	{"labels": [{"name": "Old Town", "x": 120, "y": 80}],
//	 "markers": [{"name": "Cam 1", "x": 200, "y": 300, "speed": "50 km/h"}]}
//
// An empty body, or a record set left out of it, falls back to the records
// file named in the project config. Style, base map and cache come from the
// config.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mapcustomizer/mapcustomizer/pkg/buildinfo"
	"github.com/mapcustomizer/mapcustomizer/pkg/config"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/fonts"
	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
	"github.com/mapcustomizer/mapcustomizer/pkg/observability"
	"github.com/mapcustomizer/mapcustomizer/pkg/pipeline"
)

const (
	// maxBodyBytes bounds the JSON body of a render request.
	maxBodyBytes = 1 << 20

	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	shutdownTimeout = 10 * time.Second
)

// Server serves renders of one project.
type Server struct {
	runner *pipeline.Runner
	cfg    *config.Config
	fonts  *fonts.Loader
	logger *log.Logger
	router chi.Router
}

// New creates a server rendering cfg with runner. Parsed fonts are shared
// across requests.
func New(runner *pipeline.Runner, cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		cfg:    cfg,
		fonts:  fonts.NewCachingLoader(),
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/render", s.handleRender)
	s.router = r

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags each request with the caller's X-Request-ID or a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// observe reports every request to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

// renderRequest holds the raw record sets; a missing or null set uses the
// configured file.
type renderRequest struct {
	Labels  json.RawMessage `json:"labels"`
	Markers json.RawMessage `json:"markers"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := RequestIDFrom(ctx)
	logger := s.logger.With("request_id", id)

	opts, err := s.options(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = logger

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(result.Artifact)))
	h.Set("X-Cache", cacheStatus(result.CacheHit))
	if failed := result.Report.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, p := range failed {
			names[i] = p.Name
			logger.Warn("pass failed", "pass", p.Name, "err", p.Err)
		}
		h.Set("X-Failed-Passes", strings.Join(names, ","))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Artifact); err != nil {
		logger.Debug("write response", "err", err)
	}
}

// options builds pipeline options from the config and the request body.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Options()
	opts.Output = ""
	opts.Format = pipeline.DefaultFormat
	opts.NoSave = true
	opts.Fonts = s.fonts

	var req renderRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		return opts, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode request body")
	}

	if present(req.Labels) {
		recs, err := pkgio.ReadLabels(bytes.NewReader(req.Labels))
		if err != nil {
			return opts, err
		}
		opts.Labels.Records = nonNil(recs)
	}
	if present(req.Markers) {
		recs, err := pkgio.ReadMarkers(bytes.NewReader(req.Markers))
		if err != nil {
			return opts, err
		}
		opts.Markers.Records = nonNil(recs)
	}
	return opts, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// nonNil keeps an empty request set distinct from an omitted one.
func nonNil[T any](recs []T) []T {
	if recs == nil {
		return []T{}
	}
	return recs
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Errors
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeMalformedInput, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeResourceMissing:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("render failed", "request_id", RequestIDFrom(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      string(pipeline.ErrCode(err)),
		RequestID: RequestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
