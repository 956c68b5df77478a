package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"restaurant-kds/internal/logger"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes is implemented by every service handler
type Routes interface {
	RegisterRoutes(r chi.Router)
}

// NewRouter builds the HTTP router with request logging, the health check
// and every handler's routes.
func NewRouter(log *logger.Logger, service string, health Pinger, handlers ...Routes) chi.Router {
	r := chi.NewRouter()
	r.Use(WithLogging(log))

	r.Get("/health", healthCheck(log, service, health))
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Endpoint not found", logger.RequestID(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", logger.RequestID(r.Context()))
	})

	return r
}

// healthCheck handles GET /health requests
func healthCheck(log *logger.Logger, service string, health Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		healthy := true
		if health != nil {
			if err := health.Ping(ctx); err != nil {
				log.Error("health_check_failed", "Database ping failed", logger.RequestID(r.Context()), err, nil)
				healthy = false
			}
		}

		response := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   service,
			"healthy":   healthy,
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
			response["status"] = "unhealthy"
		}

		_ = WriteJSON(w, statusCode, response)
	}
}

// Run serves srv until ctx is cancelled, then shuts it down gracefully
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("HTTP server listening on %s", srv.Addr), "startup", nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("graceful_shutdown", "Shutting down HTTP server", "shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
