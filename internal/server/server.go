package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/base-14/examples/go/random-parking-lot/internal/export"
	"github.com/base-14/examples/go/random-parking-lot/internal/logging"
	"github.com/base-14/examples/go/random-parking-lot/internal/parking"
	"github.com/base-14/examples/go/random-parking-lot/internal/telemetry"
)

type Options struct {
	Port        string
	ServiceName string
	Telemetry   *telemetry.Provider
	Exporter    export.Exporter
	// NewSource is called once per lot and once per random-vehicle run.
	NewSource func() parking.Source
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(opts Options) *Server {
	handler := NewHandler(opts)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/parking-lot", func(r chi.Router) {
		r.Post("/", handler.CreateLot)
		r.Post("/run", handler.RunVehicles)
		r.Post("/park", handler.ParkVehicle)
		r.Get("/status", handler.GetStatus)
		r.Get("/mapping", handler.GetMapping)
		r.Post("/export", handler.ExportMapping)
	})

	httpServer := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	logging.Info(context.Background(), "starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
