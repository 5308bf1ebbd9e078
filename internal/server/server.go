// Package server exposes the layout engine over HTTP for UI collaborators.
//
// The API is the engine's input/output boundary and nothing more: a snapshot
// plus viewport in, positions out. Rendering stays on the client.
//
//	POST /v1/layout        compute a layout for the posted snapshot
//	GET  /v1/layouts       list archived runs for a snapshot hash
//	GET  /v1/layouts/{id}  fetch an archived layout record
//	GET  /healthz          liveness probe
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kcirtapfromspace/chordmap/pkg/errors"
	"github.com/kcirtapfromspace/chordmap/pkg/graph"
	"github.com/kcirtapfromspace/chordmap/pkg/observability"
	"github.com/kcirtapfromspace/chordmap/pkg/pipeline"
	"github.com/kcirtapfromspace/chordmap/pkg/store"
)

// maxBodyBytes caps request bodies. Interactive graphs top out at a few
// hundred nodes; anything near this limit is a misdirected upload.
const maxBodyBytes = 8 << 20

// Server handles layout computation requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server around a pipeline runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/layouts", s.handleListLayouts)
		r.Get("/layouts/{id}", s.handleGetLayout)
	})
	s.router = r

	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until the context is cancelled, then shuts down
// gracefully with a short drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// =============================================================================
// Handlers
// =============================================================================

// layoutRequest is the POST /v1/layout body: the snapshot to lay out plus
// the run parameters.
type layoutRequest struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`

	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Ticks       int     `json:"ticks,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`
	Convergence float64 `json:"convergence,omitempty"`
	Refresh     bool    `json:"refresh,omitempty"`
}

// layoutResponse is the POST /v1/layout reply.
type layoutResponse struct {
	Positions    []graph.Position `json:"positions"`
	Ticks        int              `json:"ticks"`
	Width        float64          `json:"width"`
	Height       float64          `json:"height"`
	SnapshotHash string           `json:"snapshot_hash"`
	Cached       bool             `json:"cached"`
	RecordID     string           `json:"record_id,omitempty"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest,
			errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode request body"))
		return
	}

	snap := graph.Snapshot{Nodes: req.Nodes, Edges: req.Edges}
	opts := pipeline.Options{
		Width:       req.Width,
		Height:      req.Height,
		Ticks:       req.Ticks,
		Seed:        req.Seed,
		Convergence: req.Convergence,
		Refresh:     req.Refresh,
		Logger:      s.logger,
	}

	result, err := s.runner.Execute(r.Context(), snap, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrCodeInvalidViewport) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, layoutResponse{
		Positions:    result.Layout.Positions,
		Ticks:        result.Layout.Ticks,
		Width:        result.Layout.Width,
		Height:       result.Layout.Height,
		SnapshotHash: result.SnapshotHash,
		Cached:       result.CacheInfo.LayoutHit,
		RecordID:     result.RecordID,
	})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		s.writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeUnsupported, "layout archive is not configured"))
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := s.runner.Store.Load(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrCodeLayoutNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// listLayoutsResponse is the GET /v1/layouts reply.
type listLayoutsResponse struct {
	Layouts []store.Record `json:"layouts"`
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		s.writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeUnsupported, "layout archive is not configured"))
		return
	}

	snapshotHash := r.URL.Query().Get("snapshot_hash")
	if snapshotHash == "" {
		s.writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "snapshot_hash query parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := s.runner.Store.Recent(r.Context(), snapshotHash, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}

	s.writeJSON(w, http.StatusOK, listLayoutsResponse{Layouts: recs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID attaches a UUID to each request for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// logRequests emits one structured log line per request and feeds the
// observability hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, rec.status, elapsed)

		id, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed.Round(time.Millisecond))
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
