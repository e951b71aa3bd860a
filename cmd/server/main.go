package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/handler"
	attendancemetrics "github.com/MatheusPlinio/DotWysion/internal/attendance/metrics"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/service"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/store"
	"github.com/MatheusPlinio/DotWysion/internal/jwttoken"
	"github.com/MatheusPlinio/DotWysion/internal/notifier"
	"github.com/MatheusPlinio/DotWysion/internal/platform/config"
	"github.com/MatheusPlinio/DotWysion/internal/platform/httpserver"
	"github.com/MatheusPlinio/DotWysion/internal/platform/logger"
	"github.com/MatheusPlinio/DotWysion/internal/platform/postgres"
	platformredis "github.com/MatheusPlinio/DotWysion/internal/platform/redis"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var eventStore store.Store
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		eventStore = store.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store; events will not survive restarts")
		eventStore = store.NewMemory()
	}

	m := attendancemetrics.New()
	opts := []service.Option{service.WithMetrics(m)}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithPublisher(notifier.NewRedis(redisClient.Client, cfg.Redis.Channel)))
	}

	attendance, err := service.New(eventStore, log, opts...)
	if err != nil {
		log.Error("service construction failed", "error", err.Error())
		os.Exit(1)
	}

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(attendance, log, m, jwtService).Register(router, cfg.RequestTimeout)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting attendance server", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
