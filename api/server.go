package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// NewServer returns the HTTP server cmd/api runs. No write timeout is set
// because the reservation stream holds its connection open.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}

// Serve runs srv until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, srv *http.Server, logg *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", srv.Addr), "api.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	logg.Info(ctx, "api.shutting_down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
