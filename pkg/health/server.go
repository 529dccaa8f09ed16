package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the probes over HTTP.
type Server struct {
	srv *http.Server
}

// NewServer creates a probe server listening on addr.
func NewServer(addr string, checks Checks, opts ...Option) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewMux(checks, opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe serves until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Join(ErrServerFailed, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return errors.Join(ErrServerFailed, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(ErrServerFailed, err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrServerFailed, err)
	}
	return nil
}
