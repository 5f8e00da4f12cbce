package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/reciperank/internal/adapters/cache"
	"github.com/okian/reciperank/internal/adapters/http/api"
	"github.com/okian/reciperank/internal/adapters/http/site"
	"github.com/okian/reciperank/internal/adapters/http/swagger"
	"github.com/okian/reciperank/internal/adapters/recipestore"
	app "github.com/okian/reciperank/internal/app"
	"github.com/okian/reciperank/internal/config"
	"github.com/okian/reciperank/internal/tracing"
	"github.com/okian/reciperank/pkg/logger"
	"github.com/okian/reciperank/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	serviceName               = "reciperank"
)

func main() {
	// Runtime gauges are published by updateSystemMetrics on the custom registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logOpts := []logger.Option{logger.WithLevel(cfg.LogLevel)}
	if cfg.LogJSON {
		logOpts = append(logOpts, logger.WithJSON())
	}
	if err := logger.Init(logOpts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		Insecure:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	a.close(shutdownCtx)
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "tracer shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// application is the wired process: the HTTP handler plus what must be
// released on shutdown.
type application struct {
	svc     *app.Service
	handler http.Handler
	closers []func(context.Context)
}

func (a *application) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
}

// wire builds the cache, the recipe store, the service and the routes from cfg.
func wire(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	a := &application{}

	svcOpts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithChunkSize(cfg.ChunkSize),
		app.WithParallelThreshold(cfg.ParallelThreshold),
		app.WithDefaultMode(cfg.Mode()),
		app.WithWeightOverrides(cfg.Overrides()),
		app.WithRecencyHalfLife(cfg.RecencyHalfLifeDays),
	}

	if cfg.PostgresDSN != "" {
		store, err := recipestore.Open(cfg.PostgresDSN, recipestore.WithLogger(log.Named("recipestore")))
		if err != nil {
			return nil, fmt.Errorf("failed to open recipe store: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			log.Warn(ctx, "recipe store not reachable yet", logger.Error(err))
		}
		svcOpts = append(svcOpts, app.WithStore(store))
	}

	apiOpts := []api.Option{
		api.WithLogger(log.Named("api")),
		api.WithMaxCandidates(cfg.MaxCandidates),
		api.WithMaxRequestBytes(cfg.MaxRequestBytes),
	}
	switch {
	case cfg.CacheTTL() <= 0:
		log.Info(ctx, "response cache disabled")
	case cfg.RedisAddr != "":
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			cache.WithTTL(cfg.CacheTTL()),
			cache.WithLogger(log.Named("cache")),
		)
		if err := rc.Ping(ctx); err != nil {
			log.Warn(ctx, "redis not reachable; lookups will miss until it is", logger.Error(err))
		}
		apiOpts = append(apiOpts, api.WithCache(rc))
		a.closers = append(a.closers, func(ctx context.Context) {
			if err := rc.Close(); err != nil {
				log.Warn(ctx, "closing redis", logger.Error(err))
			}
		})
	default:
		apiOpts = append(apiOpts, api.WithCache(cache.NewMemory(cache.WithTTL(cfg.CacheTTL()))))
	}

	svc := app.New(svcOpts...)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	a.svc = svc
	a.closers = append(a.closers, svc.Stop)

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, apiOpts...).Register(ctx, mux)
	a.handler = tracing.Middleware(serviceName)(mux)

	return a, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the queue and worker gauges.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
