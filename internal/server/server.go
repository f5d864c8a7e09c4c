package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"advanced-calculator/internal/observability"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Diagnostics serves NewRouter on addr until ctx is done.
type Diagnostics struct {
	srv *http.Server
}

func NewDiagnostics(addr string) *Diagnostics {
	return &Diagnostics{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start listens in the background. Listener failures are logged; the REPL
// keeps running without diagnostics.
func (d *Diagnostics) Start() {
	go func() {
		observability.Logger.Info("diagnostics server started", zap.String("addr", d.srv.Addr))

		if err := d.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Error("diagnostics server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the listener, waiting at most shutdownTimeout.
func (d *Diagnostics) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return d.srv.Shutdown(ctx)
}
