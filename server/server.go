// Package server exposes the GCN NER pipeline as an HTTP service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/acllite/go-acllite/gcnner"
	"github.com/acllite/go-acllite/postprocess"
)

// Engine runs a single graph through the model.  The production engine is
// backed by a runtime pool, tests substitute a stub.
type Engine interface {
	Infer(ctx context.Context, adjacency, features []float32) (*gcnner.Result, error)
	Close() error
}

// Server is the HTTP front end over an inference Engine
type Server struct {
	cfg    *gcnner.Config
	engine Engine
	logger *zap.Logger
	router *mux.Router
	cost   *postprocess.CostRecorder

	started  time.Time
	requests atomic.Int64
	failures atomic.Int64
}

// New creates a Server around the given engine
func New(cfg *gcnner.Config, engine Engine, logger *zap.Logger) *Server {

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		cost:    &postprocess.CostRecorder{},
		started: time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/infer", s.handleInfer).Methods("POST")
	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	s.router = r

	return s
}

// Handler returns the HTTP handler, exposed for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and closes the engine
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Handler:      s.router,
		Addr:         s.cfg.ListenAddr,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server listening", zap.String("addr", s.cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			10*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)

		if closeErr := s.engine.Close(); closeErr != nil && err == nil {
			err = closeErr
		}

		return err
	}
}

// InferRequest is the JSON body of POST /infer
type InferRequest struct {
	// Adjacency is the flattened [nodes, nodes] normalized adjacency matrix
	Adjacency []float32 `json:"adjacency"`
	// Features is the flattened [nodes, features] feature matrix
	Features []float32 `json:"features"`
}

// InferResponse is the JSON reply of POST /infer
type InferResponse struct {
	Labels   []string     `json:"labels"`
	Entities []EntityJSON `json:"entities"`
	InferMS  float64      `json:"infer_ms"`
}

// EntityJSON is the wire form of an entity span
type EntityJSON struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ErrorResponse is the JSON reply on failure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {

	s.requests.Add(1)

	var req InferRequest

	err := json.NewDecoder(r.Body).Decode(&req)

	if err != nil {
		s.sendError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	wantAdj := s.cfg.Nodes * s.cfg.Nodes

	if len(req.Adjacency) != wantAdj {
		s.sendError(w, "invalid_request",
			fmt.Sprintf("adjacency matrix holds %d values, want %d",
				len(req.Adjacency), wantAdj), http.StatusBadRequest)
		return
	}

	wantFeat := s.cfg.Nodes * s.cfg.Features

	if len(req.Features) != wantFeat {
		s.sendError(w, "invalid_request",
			fmt.Sprintf("feature matrix holds %d values, want %d",
				len(req.Features), wantFeat), http.StatusBadRequest)
		return
	}

	res, err := s.engine.Infer(r.Context(), req.Adjacency, req.Features)

	if err != nil {
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			s.sendError(w, "timeout", err.Error(), http.StatusServiceUnavailable)
			return
		}

		s.failures.Add(1)
		s.logger.Error("inference failed", zap.Error(err))
		s.sendError(w, "inference_failed", err.Error(),
			http.StatusInternalServerError)
		return
	}

	s.cost.Add(time.Duration(res.InferCost * float64(time.Millisecond)))

	entities := make([]EntityJSON, len(res.Entities))

	for i, e := range res.Entities {
		entities[i] = EntityJSON{Type: e.Type, Start: e.Start, End: e.End}
	}

	s.sendJSON(w, http.StatusOK, InferResponse{
		Labels:   res.Labels,
		Entities: entities,
		InferMS:  res.InferCost,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MetricsResponse is the JSON reply of GET /metrics
type MetricsResponse struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Requests      int64   `json:"requests"`
	Failures      int64   `json:"failures"`
	Inferences    int     `json:"inferences"`
	AvgInferMS    float64 `json:"avg_infer_ms"`
	TotalInferMS  float64 `json:"total_infer_ms"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, MetricsResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Requests:      s.requests.Load(),
		Failures:      s.failures.Load(),
		Inferences:    s.cost.Count(),
		AvgInferMS:    s.cost.Mean(),
		TotalInferMS:  s.cost.Total(),
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("error encoding response", zap.Error(err))
	}
}

func (s *Server) sendError(w http.ResponseWriter, code, msg string, status int) {
	s.sendJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
