package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/keshon/kurumi/datastore"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/internal/config"
	"github.com/keshon/kurumi/internal/discord"
	"github.com/keshon/kurumi/internal/event"
	"github.com/keshon/kurumi/internal/events"
	"github.com/keshon/kurumi/internal/logging"
	"github.com/keshon/kurumi/internal/storage"
	"github.com/keshon/kurumi/internal/version"
	"github.com/keshon/kurumi/pkg/jobmgr"
	"github.com/keshon/kurumi/pkg/util"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func runBot(ctx context.Context, flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		if err := cfg.SetLogLevel(flags.logLevel); err != nil {
			return err
		}
	}

	log, closer := logging.New(cfg.Logging)
	defer closer.Close()

	log.Info().Str("version", version.AppVersion).Msgf("Starting %s bot...", version.AppName)
	if cfg.Source == "" {
		log.Warn().Msg("no config file found, using defaults and environment")
	} else {
		log.Info().Str("path", cfg.Source).Msg("config loaded")
	}

	token, err := config.LoadToken()
	if err != nil {
		return err
	}
	log.Debug().Str("token", util.MaskSecret(token)).Msg("token loaded")

	ds, err := datastore.NewWithConfig(datastore.Config{
		FilePath:         cfg.StoragePath,
		AutoSaveInterval: 10 * time.Second,
		Logger:           log.With().Str("component", "datastore").Logger(),
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	store := storage.NewWithStore(ds)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()

	reg, err := buildRegistry(defaultMiddlewares()...)
	if err != nil {
		return err
	}
	router := command.NewRouter(reg, cfg,
		command.WithStorage(store),
		command.WithRouterLogger(log),
	)
	log.Info().Int("commands", reg.Len()).Strs("names", reg.Names()).Msg("commands registered")

	handlers := event.NewRegistry()
	handlers.MustRegister(
		&events.ReadyHandler{Prefix: cfg.Prefix, Log: log},
		&events.MessageHandler{Router: router},
		&events.MemberJoinHandler{Log: log},
	)

	gateway, err := discord.New(discord.Config{Token: token, Logger: log})
	if err != nil {
		return err
	}
	dispatcher := event.NewDispatcher(handlers, util.NewPool(cfg.Workers),
		event.WithClient(gateway),
		event.WithLogger(log),
		event.WithBaseContext(ctx),
	)
	gateway.SetSink(dispatcher)

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	event.RegisterMetrics(metrics)
	command.RegisterMetrics(metrics)
	srv := serveMetrics(cfg.MetricsAddr, metrics, log)

	jobs := jobmgr.NewManager(jobReporter(log))
	if err := jobs.Every(ctx, "cooldown-sweep", sweepInterval, func(context.Context) error {
		if n := router.Cooldowns().Sweep(time.Now()); n > 0 {
			log.Debug().Int("removed", n).Msg("cooldowns swept")
		}
		return nil
	}); err != nil {
		return err
	}

	if err := gateway.Open(ctx); err != nil {
		jobs.StopAll()
		return fmt.Errorf("failed to connect: %w", err)
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := gateway.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close gateway")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("handlers still running at shutdown")
	}
	jobs.StopAll()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to stop metrics server")
		}
	}
	return nil
}

// serveMetrics exposes reg on addr/metrics. It returns nil when addr is empty.
func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}

func jobReporter(log zerolog.Logger) jobmgr.StatusReporter {
	l := log.With().Str("component", "jobs").Logger()
	return func(msg string) {
		l.Debug().Msg(msg)
	}
}
