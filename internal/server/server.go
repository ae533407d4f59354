// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadencehq/console/internal/config"
	"github.com/cadencehq/console/internal/console"
	"github.com/cadencehq/console/internal/handler"
	"github.com/cadencehq/console/internal/ws"
)

// Deps carries everything the route table needs.
type Deps struct {
	Config  *config.Config
	Manager *console.Manager
	Log     *slog.Logger
}

// Router builds the full route table. Exposed separately from Run so tests
// can drive it with httptest.
func Router(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(handler.RequestID)
	r.Use(handler.Recovery(d.Log))
	r.Use(handler.Logging(d.Log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	ch := handler.NewCollectionHandler(d.Manager)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/collections", ch.ListCollections)
		r.Route("/collections/{id}", func(r chi.Router) {
			r.Get("/view", ch.GetView)
			r.Put("/view-mode", ch.SetViewMode)
			r.Post("/records", ch.CreateRecord)
			r.Put("/records/{recordID}", ch.UpdateRecord)
			r.Delete("/records/{recordID}", ch.DeleteRecord)
		})

		sessions := ws.NewSessionManager(d.Config.Session.MaxAge, d.Config.Session.IdleTimeout)
		r.Get("/ws", ws.NewHandler(sessions, d.Manager, d.Log).ServeHTTP)
	})

	return r
}

// Run starts the HTTP server and blocks until ctx is canceled or the
// listener fails. Shutdown drains in-flight requests and flushes pending
// preference writes.
func Run(ctx context.Context, d Deps) error {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      Router(d),
		ReadTimeout:  d.Config.Server.ReadTimeout,
		WriteTimeout: d.Config.Server.WriteTimeout,
		IdleTimeout:  d.Config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		d.Log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	d.Manager.Flush()

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	d.Log.Info("server stopped")
	return nil
}
