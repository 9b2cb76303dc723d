package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-portal/internal/apiclient"
	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/config"
	"github.com/hackgods/clinic-portal/internal/db"
	"github.com/hackgods/clinic-portal/internal/logging"
	redisclient "github.com/hackgods/clinic-portal/internal/redis"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/web"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}

	log := logging.New(cfg.Env)
	log.WithFields(logrus.Fields{
		"env":       cfg.Env,
		"http_port": cfg.HTTPPort,
		"backend":   cfg.APIBaseURL,
	}).Info("portal starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := map[string]web.Pinger{"redis": nil, "postgres": nil}

	// Sessions: Redis when configured, process memory otherwise.
	var store session.Store
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.WithError(err).Fatal("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("error closing redis")
			}
		}()
		store = redisclient.NewSessionStore(rdb, cfg.SessionTTL)
		deps["redis"] = web.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info("sessions stored in Redis")
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		go mem.RunSweeper(rootCtx, time.Minute)
		store = mem
		log.Info("sessions stored in memory")
	}

	// Audit trail is optional.
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err == nil {
			err = audit.NewPgRecorder(pool).EnsureSchema(pgCtx)
			if err != nil {
				pool.Close()
			}
		}
		cancelPg()
		if err != nil {
			log.WithError(err).Fatal("postgres connection error")
		}
		defer pool.Close()
		recorder = audit.NewPgRecorder(pool)
		deps["postgres"] = pool
		log.Info("audit trail enabled")
	}

	router := web.NewRouter(web.RouterConfig{
		Backend:        apiclient.New(cfg.APIBaseURL, cfg.APITimeout),
		Sessions:       session.NewManager(store, session.Options{CookieName: cfg.SessionCookie, TTL: cfg.SessionTTL, Secure: cfg.IsProd()}),
		Recorder:       recorder,
		Logger:         log,
		Health:         web.NewHealthHandler(deps, cfg.Env, version),
		DashboardRoute: cfg.DashboardRoute,
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.IsProd(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must exceed the backend timeout.
		WriteTimeout: cfg.APITimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down portal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
