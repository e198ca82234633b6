package inspect

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server runs an Inspector on its own listener.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer creates a server for i listening on addr.
func NewServer(addr string, i *Inspector) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           i.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: i.log,
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("inspector listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("inspector listening", zap.String("addr", ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("inspector shutdown: %w", err)
		}
		s.log.Info("inspector stopped")
		return nil
	}
}
