// Package server exposes the sink over HTTP: one request is one chunk.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/and161185/stackdriver-sink/internal/config"
	"github.com/and161185/stackdriver-sink/internal/errs"
	"github.com/and161185/stackdriver-sink/internal/server/middleware"
	"github.com/and161185/stackdriver-sink/model"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxChunkBytes bounds a single request body after decompression.
const maxChunkBytes = 16 << 20

const shutdownTimeout = 5 * time.Second

// Publisher is the part of the sink the server drives.
type Publisher interface {
	AcceptChunk(ctx context.Context, records []model.Record) (int, error)
	Started() bool
}

type Server struct {
	sink   Publisher
	config *config.SinkConfig
	logger *zap.SugaredLogger
}

func NewServer(sink Publisher, cfg *config.SinkConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		sink:   sink,
		config: cfg,
		logger: logger,
	}
}

// Router builds the handler tree with the configured middleware.
func (srv *Server) Router() (http.Handler, error) {
	trusted, err := middleware.TrustedCIDR(srv.config.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.LogMiddleware(srv.logger))
	router.Use(trusted)
	router.Use(middleware.VerifyHashMiddleware(srv.config.HashKey))
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.CompressMiddleware)

	router.Post("/chunks", srv.ChunkHandler)
	router.Get("/ping", srv.PingHandler)
	return router, nil
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	handler, err := srv.Router()
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              srv.config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Infow("ingest server listening", "addr", srv.config.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	srv.logger.Info("shutting down ingest server")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

// ChunkHandler decodes the body into records and publishes them as one chunk.
func (srv *Server) ChunkHandler(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxChunkBytes)
	records, err := decodeChunk(r.Header.Get("Content-Type"), body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errUnsupportedContentType) {
			status = http.StatusUnsupportedMediaType
		}
		srv.logger.Warnw("failed to decode chunk", "error", err)
		writeJSON(w, status, model.ChunkResponse{Error: err.Error()}, srv.logger)
		return
	}

	n, err := srv.sink.AcceptChunk(r.Context(), records)
	if err != nil {
		srv.logger.Errorw("failed to publish chunk", "published", n, "records", len(records), "error", err)
		writeJSON(w, statusFor(err), model.ChunkResponse{Published: n, Error: err.Error()}, srv.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ChunkResponse{Published: n}, srv.logger)
}

// PingHandler reports whether the sink has resolved its descriptor.
func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	if !srv.sink.Started() {
		http.Error(w, "sink not started", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotStarted):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrCoercion),
		errors.Is(err, errs.ErrUnsupportedValueType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrWrite):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("failed to write response JSON: %v", err)
	}
}
