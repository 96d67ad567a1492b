package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"site-ems/internal/api"
	"site-ems/internal/config"
	"site-ems/internal/export"
	"site-ems/internal/generator"
	"site-ems/internal/logger"
	"site-ems/internal/metrics"
	"site-ems/internal/runstore"
	"site-ems/internal/scenario"
)

func main() {
	log := logger.New("api")
	if err := run(log); err != nil {
		log.Errorf("api: %v", err)
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// EMS_CONFIG_FILE is read directly; everything else may come from EMS_* overrides.
	cfg, err := config.LoadServer(os.Getenv("EMS_CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var sinks []metrics.Sink
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := metrics.NewPromSink(reg)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		sinks = append(sinks, prom)
		gatherer = reg
	}

	var exporter export.Exporter = export.NopExporter{}
	if cfg.Influx.Enabled() {
		exporter = export.NewInfluxExporterWithFallback(ctx, cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
	}
	defer exporter.Close()

	runner, err := scenario.NewRunner(generator.DefaultProfile(),
		scenario.WithMetrics(metrics.NewMultiSink(sinks...)),
		scenario.WithLogger(logger.New("scenario")),
	)
	if err != nil {
		return err
	}

	store := runstore.New(time.Duration(cfg.RunTTLSeconds) * time.Second)
	go store.Run(ctx, time.Minute)

	router := api.NewRouter(api.Deps{
		Runner:      runner,
		Store:       store,
		Exporter:    exporter,
		BatteryDir:  cfg.BatteryDir,
		StaticDir:   cfg.StaticDir,
		MaxParallel: cfg.MaxParallel,
		Gatherer:    gatherer,
		MetricsPath: cfg.Metrics.Path,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting API server on %s", srv.Addr)
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

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
