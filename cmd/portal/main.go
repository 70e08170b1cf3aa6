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

	"github.com/accesswash/portal/internal/config"
	"github.com/accesswash/portal/internal/metrics"
	"github.com/accesswash/portal/server"
	"github.com/accesswash/portal/tenants"
	"github.com/accesswash/portal/tenants/repofakes"
	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running portal gateway: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := newLogger(cfg)
	displayAppname(cfg.AppName)

	options := []server.Option{
		server.WithLogger(log),
		server.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		server.WithTenantRepo(seedTenantRegistry(cfg)),
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("using server-side redis sessions")
		options = append(options, server.WithRedis(redisClient))
	}

	srv, err := server.New(cfg, options...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("env", cfg.Env).Msg("portal gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	waitForStopSignal()
	return shutdown(httpServer, log)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = zerolog.Logger{}
	if cfg.IsProduction() {
		out = zerolog.New(os.Stdout)
	} else {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return out.Level(level).With().Timestamp().Logger()
}

// seedTenantRegistry loads the in-memory tenant registry. The default
// tenant always exists so the demo portal works out of the box.
func seedTenantRegistry(cfg *config.Config) tenants.Repo {
	repo := repofakes.NewFakeTenantRepo()
	_ = repo.Upsert(&tenants.Tenant{
		ID:     tenants.Default,
		Name:   "AccessWash Demo Utility",
		Domain: tenants.Default + "." + cfg.PlatformDomain,
	})
	return repo
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("portal gateway stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
