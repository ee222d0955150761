package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

type metricsKey struct{}

// withMetrics makes metrics available to the clients a command builds.
func withMetrics(ctx context.Context, metrics *glpi.PrometheusMetrics) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if metrics == nil {
		return ctx
	}

	return context.WithValue(ctx, metricsKey{}, metrics)
}

func metricsFromContext(ctx context.Context) *glpi.PrometheusMetrics {
	if ctx == nil {
		return nil
	}

	metrics, _ := ctx.Value(metricsKey{}).(*glpi.PrometheusMetrics)

	return metrics
}

// metricsServer exposes the API call metrics of one CLI run.
type metricsServer struct {
	mutex   sync.Mutex
	metrics *glpi.PrometheusMetrics
	server  *http.Server
	addr    string
}

func newMetricsServer() *metricsServer {
	return &metricsServer{}
}

// Start listens on addr. An empty addr disables metrics.
func (s *metricsServer) Start(addr string) error {
	if addr == "" {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	metrics, err := glpi.NewPrometheusMetrics(registry, "glpi")
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{Handler: router, ReadHeaderTimeout: constants.ShortHTTPTimeout}

	go func() {
		_ = server.Serve(listener)
	}()

	s.metrics = metrics
	s.server = server
	s.addr = listener.Addr().String()

	return nil
}

// Metrics returns the collectors, or nil when not started.
func (s *metricsServer) Metrics() *glpi.PrometheusMetrics {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.metrics
}

// Addr returns the bound address, or "" when not started.
func (s *metricsServer) Addr() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.addr
}

// Shutdown stops the server.
func (s *metricsServer) Shutdown(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.server == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShortHTTPTimeout)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.server = nil
	s.metrics = nil

	if err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}

	return nil
}
