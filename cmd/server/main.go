package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scheduler-sim/dispatch"
	"scheduler-sim/dispatch/application"
	"scheduler-sim/dispatch/domain"
	"scheduler-sim/dispatch/infra"
	"scheduler-sim/internal/logging"
	"scheduler-sim/internal/tracing"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, flush, err := logging.New(logging.Options{Development: cfg.LogDevelopment, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.Error(err, "server stopped with error")
		flush()
		os.Exit(1)
	}
}

func run(cfg config, logger logr.Logger) error {
	setupLog := logger.WithName("setup")

	if cfg.TracingEnabled {
		shutdownTracing, err := tracing.Init("scheduler-sim", version, cfg.TracingFile)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				setupLog.Error(err, "tracing shutdown")
			}
		}()
	}

	pool := infra.NewChanPool(cfg.SlotCapacity)
	policy := application.NewPolicy(cfg.Mode, cfg.Policy)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := infra.NewMetrics(reg, pool)
	if err != nil {
		return err
	}
	metrics.SetMode(policy.Get())

	memStats := infra.NewMemoryStatsStore()
	sinks := infra.MultiSink{memStats, metrics}

	if cfg.StatsRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return err
		}

		sinks = append(sinks, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsBucket(cfg.StatsBucket),
		))
	}

	if cfg.NatsURL != "" {
		pub, err := infra.NewNATSPublisher(cfg.NatsURL, cfg.NatsSubject)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		sinks = append(sinks, pub)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rateSvc *application.RateService
	if cfg.RateEnabled {
		buckets := infra.NewClientBuckets(cfg.RateRPS, cfg.RateBurst,
			infra.WithBucketsLogger(logger.WithName("rate")))
		buckets.StartJanitor(ctx)
		rateSvc = &application.RateService{Store: buckets}
	}

	dispatcher := application.NewDispatcher(application.DispatcherOptions{
		Admission: application.ConcurrencyService{Pool: pool, AcquireTimeout: cfg.AcquireTimeout},
		Sequencer: infra.NewSequencer(),
		Policy:    policy,
		Sink:      sinks,
		Log:       logger.WithName("dispatcher"),
	})

	srv := dispatch.NewServer(dispatch.Options{
		Addr:         cfg.ListenAddr,
		Backlog:      cfg.Backlog,
		PeekSize:     cfg.PeekSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Dispatcher:   dispatcher,
		Rate:         rateSvc,
		ModeObserver: metrics,
		Log:          logger,
	})

	setupLog.Info("scheduler server starting",
		"addr", cfg.ListenAddr, "backlog", cfg.Backlog, "slots", cfg.SlotCapacity,
		"mode", policy.Get().String(), "acquireTimeout", cfg.AcquireTimeout)
	setupLog.Info("rate", "enabled", cfg.RateEnabled, "rps", cfg.RateRPS, "burst", cfg.RateBurst)
	setupLog.Info("sinks", "redis", cfg.StatsRedisAddr, "bucket", cfg.StatsBucket, "nats", cfg.NatsURL, "metrics", cfg.MetricsAddr, "tracing", cfg.TracingEnabled)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, dispatch.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			setupLog.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		setupLog.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			setupLog.Info("in-flight requests were canceled")
			return nil
		}
		return err
	})

	err = g.Wait()
	logSummary(setupLog, memStats)
	return err
}

func logSummary(logger logr.Logger, stats *infra.MemoryStatsStore) {
	total := stats.Total()
	logger.Info("requests served",
		"total", total.Requests, "succeeded", total.Succeeded, "failed", total.Failed,
		"avgQueueWait", total.AvgQueueWait(), "avgProcessing", total.AvgProcessing())
	byMode := stats.ByMode()
	for _, m := range domain.Modes {
		c, ok := byMode[m]
		if !ok {
			continue
		}
		logger.Info("mode summary", "mode", m.String(), "requests", c.Requests,
			"avgQueueWait", c.AvgQueueWait(), "avgProcessing", c.AvgProcessing())
	}
}
