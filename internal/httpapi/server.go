package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
)

type Server struct {
	Engine          *gin.Engine
	addr            string
	shutdownTimeout time.Duration
	log             *logging.Logger
}

func NewServer(addr string, shutdownTimeout time.Duration, cfg RouterConfig) *Server {
	log := cfg.Log
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		Engine:          NewRouter(cfg),
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		log:             log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http_listen", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.log.Info("http_shutdown", "timeout_ms", s.shutdownTimeout.Milliseconds())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
