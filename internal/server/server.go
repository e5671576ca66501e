// Package server exposes the demo networks over a JSON HTTP API.
//
// Routes:
//
//	GET  /api/xor/network            layer structure of the XOR network
//	POST /api/xor/predict            {"input":[a,b]} -> prediction and per-layer activations
//	GET  /api/autoencoder/structure  layer structure of the autoencoder
//	POST /api/autoencoder/predict    {"input":[784 pixels]} -> reconstruction
//	GET  /healthz                    liveness and model restore status
//
// Errors are reported as {"error": "..."} with status 400 for invalid input
// and 500 when a network is not initialized.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tinynet-ml/tinynet/internal/config"
	"github.com/tinynet-ml/tinynet/internal/demo"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Server routes HTTP requests to the demo models.
type Server struct {
	app          *demo.App
	logger       *zap.Logger
	maxBodyBytes int64
	handler      http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// New creates a server for app.
func New(app *demo.App, opts ...Option) *Server {
	s := &Server{
		app:          app,
		logger:       zap.NewNop(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/xor/network", s.handleStructure(s.xor))
	mux.HandleFunc("POST /api/xor/predict", s.handleXORPredict)
	mux.HandleFunc("GET /api/autoencoder/structure", s.handleStructure(s.autoencoder))
	mux.HandleFunc("POST /api/autoencoder/predict", s.handleAutoencoderPredict)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = withRequestID(withAccessLog(s.logger, mux))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Addr)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.ServerConfig) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func (s *Server) xor() *demo.Model {
	if s.app == nil {
		return nil
	}
	return s.app.XOR
}

func (s *Server) autoencoder() *demo.Model {
	if s.app == nil {
		return nil
	}
	return s.app.Autoencoder
}
