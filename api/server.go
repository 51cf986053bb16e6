package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/angelmondragon/shopdash/api/routes"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Server runs the local callback listener until its context ends.
type Server struct {
	http *http.Server
	logg *logger.Logger
}

func NewServer(addr string, p routes.Params) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           routes.NewRouter(p),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logg: p.Logger,
	}
}

// Serve blocks on ln until ctx is cancelled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "addr", ln.Addr().String()), "callback server listening")
		}
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ListenAndServe binds the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
